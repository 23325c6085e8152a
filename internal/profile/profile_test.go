package profile

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zulandar/accreditrack/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.NewDB(t)

	p, err := Create(db, CreateOpts{Name: "Grace Hopper", Email: "grace@example.edu", CanEdit: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", p.ID, err)
	}
	if p.Role != "contributor" {
		t.Errorf("Role = %q, want contributor (default)", p.Role)
	}

	got, err := Get(db, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Grace Hopper" || !got.CanEdit || got.IsUser {
		t.Errorf("Get = %+v", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.NewDB(t)

	tests := []struct {
		name string
		opts CreateOpts
	}{
		{"missing name", CreateOpts{}},
		{"bad email", CreateOpts{Name: "x", Email: "not-an-email"}},
		{"bad role", CreateOpts{Name: "x", Role: "dean"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(db, tt.opts)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "profile: invalid input") {
				t.Errorf("error = %q", err.Error())
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := Get(db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_OrderedByName(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Profile(t, db, "p2", "Zed")
	testutil.Profile(t, db, "p1", "Ada")

	profiles, err := List(db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "Ada" {
		t.Errorf("List = %+v", profiles)
	}
}
