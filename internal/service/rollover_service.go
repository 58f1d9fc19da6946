package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"task-delegator/internal/clock"
	"task-delegator/internal/log"
	"task-delegator/internal/repository"
)

// Move records a single rollover: the task's term left fromISO and now
// sits on toISO.
type Move struct {
	TaskID  uint
	Title   string
	FromISO string
	ToISO   string
}

// RolloverService pushes overdue deadlines forward by one day. It only
// moves terms and reports what moved; notification and calendar sync of
// the moves belong to the composing job.
type RolloverService struct {
	clk   *clock.Clock
	tasks *repository.TaskRepository
}

func NewRolloverService(clk *clock.Clock, tasks *repository.TaskRepository) *RolloverService {
	return &RolloverService{clk: clk, tasks: tasks}
}

// Run moves every open task of the assignee whose term is strictly
// before today to tomorrow's local midnight. Tasks due today are never
// touched, and the push is unconditionally one day into the future even
// at the stroke of midnight. Running twice in a row is safe: the second
// pass finds nothing overdue.
func (s *RolloverService) Run(ctx context.Context, assigneeID uint) ([]Move, error) {
	now := s.clk.Now()
	dayStart, dayEnd, err := s.clk.DayBounds(now.DateISO)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	tomorrow := dayEnd

	overdue, err := s.tasks.OverdueBefore(ctx, assigneeID, dayStart)
	if err != nil {
		return nil, err
	}

	var moves []Move
	for _, task := range overdue {
		if err := s.tasks.UpdateTerm(ctx, task.ID, tomorrow); err != nil {
			return moves, err
		}
		moves = append(moves, Move{
			TaskID:  task.ID,
			Title:   task.Title,
			FromISO: s.clk.DateOf(*task.Term),
			ToISO:   s.clk.DateOf(tomorrow),
		})
	}
	return moves, nil
}

// RolloverJob composes the engine with its post-steps: per assignee,
// roll the overdue tasks, report the moves, and kick a calendar resync
// for each moved task.
type RolloverJob struct {
	assignees *repository.AssigneeRepository
	rollover  *RolloverService
	notifier  Notifier
	syncer    *CalendarSyncService
}

func NewRolloverJob(assignees *repository.AssigneeRepository, rollover *RolloverService, notifier Notifier, syncer *CalendarSyncService) *RolloverJob {
	return &RolloverJob{assignees: assignees, rollover: rollover, notifier: notifier, syncer: syncer}
}

// Run sweeps all assignees. Failures are isolated per assignee; one
// broken branch never stops the rest of the batch.
func (j *RolloverJob) Run(ctx context.Context) error {
	assignees, err := j.assignees.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("rollover job: %w", err)
	}

	runID := uuid.NewString()
	var errs []error
	for _, assignee := range assignees {
		moves, err := j.rollover.Run(ctx, assignee.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("rollover assignee %d: %w", assignee.ID, err))
		}
		if len(moves) == 0 {
			continue
		}
		log.Info("rolled over", "run", runID, "assignee", assignee.ID, "moved", len(moves))

		if err := j.notifier.SendRolloverReport(ctx, assignee.ID, moves); err != nil {
			errs = append(errs, fmt.Errorf("rollover report to assignee %d: %w", assignee.ID, err))
		}
		for _, move := range moves {
			j.syncer.SyncAsync(move.TaskID)
		}
	}
	return errors.Join(errs...)
}
