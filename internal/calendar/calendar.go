// Package calendar wraps the remote calendar provider behind the small
// surface the sync engine needs: create, patch, delete, and a
// distinguishable "not found" outcome.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound reports that the remote event no longer exists.
// Patch and Delete return it (wrapped) instead of a generic error so
// the sync engine can self-heal stale correlations.
var ErrEventNotFound = errors.New("calendar: event not found")

// Event is the payload the planner writes to the remote calendar.
// Either Date is set (all-day event on that civil date) or Start is set
// (timed event; the provider implementation picks the duration).
type Event struct {
	Title       string
	Description string
	Date        string // "YYYY-MM-DD", all-day
	Start       *time.Time
	TaskID      uint
}

// API is the provider interface consumed by the sync engine. Insert is
// the only call that is not idempotent from the caller's perspective;
// the engine wraps it in the race-safe attach protocol.
type API interface {
	Insert(ctx context.Context, ev Event) (id, link string, err error)
	Patch(ctx context.Context, id string, ev Event) error
	Delete(ctx context.Context, id string) error
}
