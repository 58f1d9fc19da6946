package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-delegator/internal/calendar"
	"task-delegator/internal/clock"
	"task-delegator/internal/log"
	"task-delegator/internal/model"
	"task-delegator/internal/repository"
)

// ErrSyncDisabled is returned when no calendar provider is configured.
var ErrSyncDisabled = errors.New("calendar sync disabled")

// CalendarSyncService keeps a task's calendar event in 1:1
// correspondence with its deadline state. Repeated calls converge; any
// drift a call leaves behind (crash, lost race, out-of-band edits) is
// repaired by the next call or by the nightly sweep.
type CalendarSyncService struct {
	tasks   *repository.TaskRepository
	cal     calendar.API
	clk     *clock.Clock
	timeout time.Duration
}

func NewCalendarSyncService(tasks *repository.TaskRepository, cal calendar.API, clk *clock.Clock) *CalendarSyncService {
	return &CalendarSyncService{
		tasks:   tasks,
		cal:     cal,
		clk:     clk,
		timeout: 30 * time.Second,
	}
}

// Sync reconciles one task. The decision table is keyed on whether an
// event should exist (open task with a term) and whether one is
// currently attached:
//
//	should, attached  -> patch; on not-found fall through to create+attach
//	should, detached  -> create + race-safe attach
//	stale,  attached  -> delete remote, clear correlation
//	stale,  detached  -> nothing
func (s *CalendarSyncService) Sync(ctx context.Context, taskID uint) error {
	if s.cal == nil {
		return ErrSyncDisabled
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	should := task.ShouldHaveEvent()
	attached := task.GoogleEventID != nil

	switch {
	case !should && !attached:
		return nil

	case !should && attached:
		err := s.cal.Delete(ctx, *task.GoogleEventID)
		if err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			return fmt.Errorf("sync task %d: %w", task.ID, err)
		}
		return s.tasks.ClearEventRef(ctx, task.ID)

	case should && !attached:
		return s.createAndAttach(ctx, task, nil)

	default:
		err := s.cal.Patch(ctx, *task.GoogleEventID, s.payload(task))
		if errors.Is(err, calendar.ErrEventNotFound) {
			// Event vanished out-of-band; recreate under the old id as
			// the expected prior value so concurrent healers still
			// serialize on the conditional update.
			return s.createAndAttach(ctx, task, task.GoogleEventID)
		}
		if err != nil {
			return fmt.Errorf("sync task %d: %w", task.ID, err)
		}
		return nil
	}
}

// createAndAttach runs the race-safe attach protocol: create the event
// unconditionally, then attach it with a conditional update on the
// previously observed event id. Losing the conditional update means a
// concurrent sync attached its own event first; the fresh event is
// compensated away and the call succeeds as a no-op.
func (s *CalendarSyncService) createAndAttach(ctx context.Context, task *model.Task, expected *string) error {
	id, link, err := s.cal.Insert(ctx, s.payload(task))
	if err != nil {
		return fmt.Errorf("sync task %d: %w", task.ID, err)
	}

	won, err := s.tasks.CompareAndSwapEventID(ctx, task.ID, expected, &id, &link)
	if err != nil || !won {
		if derr := s.cal.Delete(ctx, id); derr != nil && !errors.Is(derr, calendar.ErrEventNotFound) {
			log.Error("compensating delete failed", derr, "task", task.ID, "event", id)
		}
		if err != nil {
			return fmt.Errorf("sync task %d: %w", task.ID, err)
		}
		log.Info("lost attach race", "task", task.ID, "event", id)
		return nil
	}
	return nil
}

// SyncAsync reconciles in the background with its own deadline; callers
// fire and forget after any task mutation. Errors are logged, not
// propagated, because the next sync or sweep self-heals.
func (s *CalendarSyncService) SyncAsync(taskID uint) {
	if s.cal == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Sync(ctx, taskID); err != nil {
			log.Error("background sync failed", err, "task", taskID)
		}
	}()
}

// SweepAll reconciles every open dated task plus every done task still
// holding an event reference. Runs nightly to repair drift the
// per-mutation syncs missed. Failures are isolated per task.
func (s *CalendarSyncService) SweepAll(ctx context.Context) error {
	if s.cal == nil {
		return ErrSyncDisabled
	}

	open, err := s.tasks.ListOpenWithTerm(ctx)
	if err != nil {
		return fmt.Errorf("calendar sweep: %w", err)
	}
	stale, err := s.tasks.ListDoneWithEventRef(ctx)
	if err != nil {
		return fmt.Errorf("calendar sweep: %w", err)
	}

	var errs []error
	for _, task := range append(open, stale...) {
		if err := s.Sync(ctx, task.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *CalendarSyncService) payload(task *model.Task) calendar.Event {
	ev := calendar.Event{
		Title:       task.Title,
		Description: task.Description,
		TaskID:      task.ID,
	}
	if task.Term == nil {
		return ev
	}
	ev.Date = s.clk.DateOf(*task.Term)
	if task.DeadlineTime != "" {
		var hh, mm int
		if _, err := fmt.Sscanf(task.DeadlineTime, "%d:%d", &hh, &mm); err == nil {
			start := task.Term.In(s.clk.Location()).Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
			ev.Start = &start
		}
	}
	return ev
}
