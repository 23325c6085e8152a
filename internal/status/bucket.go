package status

import (
	"errors"
	"fmt"
)

// Bucket is a coarse status filter over the 0..100 progress range.
type Bucket string

const (
	AnyBucket  Bucket = ""
	NotStarted Bucket = "not_started"
	Underway   Bucket = "in_progress"
	Finished   Bucket = "completed"
)

// ErrUnknownBucket is returned by ParseBucket for an unrecognised name.
var ErrUnknownBucket = errors.New("status: unknown bucket")

// ParseBucket validates a bucket name. The empty string and "all" select
// every status.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case AnyBucket, NotStarted, Underway, Finished:
		return Bucket(s), nil
	case "all":
		return AnyBucket, nil
	}
	return AnyBucket, fmt.Errorf("%w %q (not_started, in_progress, completed)", ErrUnknownBucket, s)
}

// Range returns the inclusive status bounds of b.
func (b Bucket) Range() (lo, hi int) {
	switch b {
	case NotStarted:
		return 0, 0
	case Underway:
		return 1, 99
	case Finished:
		return 100, 100
	}
	return 0, 100
}

// Contains reports whether a progress value falls in b. Values outside
// 0..100 are clamped first.
func (b Bucket) Contains(status int) bool {
	status = min(max(status, 0), 100)
	lo, hi := b.Range()
	return status >= lo && status <= hi
}
