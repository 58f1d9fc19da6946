package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-delegator/internal/clock"
	"task-delegator/internal/log"
	"task-delegator/internal/model"
	"task-delegator/internal/repository"
)

// ReminderItem is one line of an aggregated reminder message.
type ReminderItem struct {
	Title        string
	DeadlineTime string // "HH:MM", empty when the task has no time of day
}

// Notifier delivers aggregated messages to assignees. Implementations
// must treat a returned error as "nothing was delivered" so the caller
// can release its dedup claims.
type Notifier interface {
	SendReminder(ctx context.Context, assigneeID uint, dateISO, slotID string, items []ReminderItem) error
	SendRolloverReport(ctx context.Context, assigneeID uint, moves []Move) error
}

// ReminderService runs the per-slot notification tick. Each tick is
// stateless; correctness under overlapping ticks (same or different
// process) rests entirely on the dedup log's uniqueness constraint.
type ReminderService struct {
	clk      *clock.Clock
	tasks    *repository.TaskRepository
	claims   *repository.ReminderLogRepository
	notifier Notifier
}

func NewReminderService(clk *clock.Clock, tasks *repository.TaskRepository, claims *repository.ReminderLogRepository, notifier Notifier) *ReminderService {
	return &ReminderService{clk: clk, tasks: tasks, claims: claims, notifier: notifier}
}

// RunTick processes every slot active at the current civil time. When
// no slot matches and force is false the tick exits without touching
// storage. A forced run synthesizes one slot per tier at the current
// minute; it still goes through TryClaim like any other tick.
func (s *ReminderService) RunTick(ctx context.Context, force bool) error {
	now := s.clk.Now()
	slots := clock.ActiveSlots(now.Hour, now.Minute)
	if len(slots) == 0 {
		if !force {
			return nil
		}
		slots = clock.SyntheticSlots(now.Hour, now.Minute)
	}

	_, dayEnd, err := s.clk.DayBounds(now.DateISO)
	if err != nil {
		return fmt.Errorf("reminder tick: %w", err)
	}

	runID := uuid.NewString()
	log.Info("reminder tick", "run", runID, "date", now.DateISO, "slots", len(slots), "forced", force)

	var errs []error
	for _, slot := range slots {
		if err := s.runSlot(ctx, runID, now.DateISO, dayEnd, slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ReminderService) runSlot(ctx context.Context, runID, dateISO string, dayEnd time.Time, slot clock.Slot) error {
	// Bound is dayEnd, not an exact date match: overdue tasks that
	// escaped rollover stay in the result and keep being nagged every
	// slot until closed or rolled.
	due, err := s.tasks.DueForReminder(ctx, slot.Tier, dayEnd)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	slotID := slot.ID()
	var errs []error
	claimed := make(map[uint][]model.Task)
	for _, task := range due {
		res, err := s.claims.TryClaim(ctx, task.ID, dateISO, slotID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if res == repository.AlreadyClaimed {
			continue
		}
		claimed[task.AssigneeID] = append(claimed[task.AssigneeID], task)
	}
	if len(claimed) == 0 {
		return errors.Join(errs...)
	}

	// One aggregated message per assignee, delivered concurrently.
	// A failed delivery releases that assignee's claims and is reported
	// without disturbing the other branches.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for assigneeID, batch := range claimed {
		wg.Add(1)
		go func(assigneeID uint, batch []model.Task) {
			defer wg.Done()
			if err := s.deliver(ctx, assigneeID, dateISO, slotID, batch); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(assigneeID, batch)
	}
	wg.Wait()

	log.Info("slot processed", "run", runID, "slot", slotID, "claimed", len(claimed))
	return errors.Join(errs...)
}

func (s *ReminderService) deliver(ctx context.Context, assigneeID uint, dateISO, slotID string, batch []model.Task) error {
	items := make([]ReminderItem, 0, len(batch))
	for _, task := range batch {
		items = append(items, ReminderItem{Title: task.Title, DeadlineTime: task.DeadlineTime})
	}

	if err := s.notifier.SendReminder(ctx, assigneeID, dateISO, slotID, items); err != nil {
		// Release after the failed attempt, never before: releasing
		// first would let a concurrent duplicate through.
		for _, task := range batch {
			if relErr := s.claims.Release(ctx, task.ID, dateISO, slotID); relErr != nil {
				log.Error("release claim failed", relErr, "task", task.ID, "slot", slotID)
			}
		}
		return fmt.Errorf("deliver %s to assignee %d: %w", slotID, assigneeID, err)
	}
	return nil
}
