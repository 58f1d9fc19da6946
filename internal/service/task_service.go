package service

import (
	"context"
	"fmt"
	"time"

	"task-delegator/internal/clock"
	"task-delegator/internal/model"
	"task-delegator/internal/recurrence"
	"task-delegator/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title        string
	Description  string
	Urgency      model.Urgency
	DateISO      string // deadline civil date, empty for no deadline
	DeadlineTime string // "HH:MM", optional
	Recurrence   model.Recurrence
}

// TaskService wraps the task mutation workflows. Every mutation ends
// with a fire-and-forget calendar reconciliation.
type TaskService struct {
	tasks  *repository.TaskRepository
	clk    *clock.Clock
	syncer *CalendarSyncService
}

func NewTaskService(tasks *repository.TaskRepository, clk *clock.Clock, syncer *CalendarSyncService) *TaskService {
	return &TaskService{tasks: tasks, clk: clk, syncer: syncer}
}

func (s *TaskService) Create(ctx context.Context, assigneeID uint, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Urgency == "" {
		input.Urgency = model.UrgencyLight
	}

	task := model.Task{
		AssigneeID:   assigneeID,
		Title:        input.Title,
		Description:  input.Description,
		Status:       model.StatusPending,
		Urgency:      input.Urgency,
		DeadlineTime: input.DeadlineTime,
		Recurrence:   input.Recurrence,
	}

	if input.DateISO != "" {
		term, err := s.clk.Midnight(input.DateISO)
		if err != nil {
			return nil, err
		}
		task.Term = &term
		if task.Recurring() {
			task.RecurrenceAnchor = &term
		}
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	s.syncer.SyncAsync(task.ID)
	return &task, nil
}

// Complete closes a task. A recurring task rolls forward instead: its
// term and anchor advance to the next occurrence and it stays pending.
func (s *TaskService) Complete(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.Recurring() && s.rollForward(task) {
		if err := s.tasks.Save(ctx, task); err != nil {
			return nil, err
		}
		s.syncer.SyncAsync(task.ID)
		return task, nil
	}

	task.Status = model.StatusDone
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.syncer.SyncAsync(task.ID)
	return task, nil
}

// rollForward advances term and anchor to the next occurrence. Returns
// false when the task has no date to advance from, in which case the
// caller closes it like a one-off.
func (s *TaskService) rollForward(task *model.Task) bool {
	base := task.RecurrenceAnchor
	if base == nil {
		base = task.Term
	}
	if base == nil {
		return false
	}
	next := recurrence.Next(*base, task.Recurrence, s.clk.Location())
	task.Term = &next
	task.RecurrenceAnchor = &next
	task.Status = model.StatusPending
	return true
}

// Reschedule moves the deadline to the given civil date. While
// recurrence is active the anchor follows the term.
func (s *TaskService) Reschedule(ctx context.Context, taskID uint, dateISO string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	term, err := s.clk.Midnight(dateISO)
	if err != nil {
		return nil, err
	}
	task.Term = &term
	if task.Recurring() {
		task.RecurrenceAnchor = &term
	}
	if task.Status == model.StatusOverdue {
		task.Status = model.StatusPending
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.syncer.SyncAsync(task.ID)
	return task, nil
}

// SetRecurrence turns recurrence on, anchoring at the current term.
func (s *TaskService) SetRecurrence(ctx context.Context, taskID uint, rule model.Recurrence) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task.Recurrence = rule
	if rule == model.RecurrenceNone {
		task.RecurrenceAnchor = nil
	} else {
		task.RecurrenceAnchor = task.Term
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetDeadlineTime updates the optional time of day and resyncs.
func (s *TaskService) SetDeadlineTime(ctx context.Context, taskID uint, hhmm string) (*model.Task, error) {
	if hhmm != "" {
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return nil, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
		}
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task.DeadlineTime = hhmm
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.syncer.SyncAsync(task.ID)
	return task, nil
}
