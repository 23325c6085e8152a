package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/export"
	"github.com/zulandar/accreditrack/internal/group"
	"github.com/zulandar/accreditrack/internal/link"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/section"
	"github.com/zulandar/accreditrack/internal/status"
	"github.com/zulandar/accreditrack/internal/task"
	"gorm.io/gorm"
)

// now is the clock handlers classify deadlines against.
var now = time.Now

// renderWorkbook builds the XLSX served by the export endpoint.
var renderWorkbook = export.Bytes

// api carries the shared state of every handler.
type api struct {
	db    *gorm.DB
	title string
}

func (a *api) board() (*overview.Board, error) {
	return overview.Load(overview.DBSource{DB: a.db}, now())
}

// taskViews classifies rows and attaches each task's group.
func (a *api) taskViews(rows []models.Task) ([]overview.TaskView, error) {
	links, err := link.Links(a.db)
	if err != nil {
		return nil, err
	}
	groupOf := make(map[string]string, len(links))
	for _, l := range links {
		groupOf[l.TaskID] = l.GroupID
	}
	today := now()
	views := make([]overview.TaskView, len(rows))
	for i, r := range rows {
		views[i] = overview.View(domain.TaskFromRow(r), today)
		views[i].GroupID = groupOf[r.ID]
	}
	return views, nil
}

func (a *api) taskView(id string) (*overview.TaskView, error) {
	row, err := task.Get(a.db, id)
	if err != nil {
		return nil, err
	}
	views, err := a.taskViews([]models.Task{*row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, group.ErrFixedGroup), errors.Is(err, link.ErrLinkedElsewhere):
		return http.StatusConflict
	case errors.Is(err, task.ErrBlockedReason), errors.Is(err, task.ErrOwnerCollaborator),
		errors.Is(err, group.ErrTooDeep), errors.Is(err, section.ErrTooDeep),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrInvalidDate), errors.Is(err, link.ErrNotTopLevel),
		errors.Is(err, status.ErrUnknownBucket):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrNotFound), errors.Is(err, section.ErrNotFound),
		errors.Is(err, group.ErrNotFound), errors.Is(err, link.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
