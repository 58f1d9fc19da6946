package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-delegator/internal/model"
)

// TaskRepository handles CRUD and the core's task queries.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task %d: %w", task.ID, err)
	}
	return nil
}

// DueForReminder lists open tasks of the given tier whose term falls
// before dayEnd. The bound deliberately sweeps in overdue tasks that
// escaped rollover, so they keep being reminded every slot until closed
// or rolled.
func (r *TaskRepository) DueForReminder(ctx context.Context, tier model.Urgency, dayEnd time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND urgency = ? AND term IS NOT NULL AND term < ?", model.StatusDone, tier, dayEnd).
		Order("term, id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("due tasks for %s: %w", tier, err)
	}
	return tasks, nil
}

// OverdueBefore lists an assignee's open tasks whose term is strictly
// before dayStart. A task due today is never in the result.
func (r *TaskRepository) OverdueBefore(ctx context.Context, assigneeID uint, dayStart time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("assignee_id = ? AND status <> ? AND term IS NOT NULL AND term < ?", assigneeID, model.StatusDone, dayStart).
		Order("term, id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("overdue tasks for assignee %d: %w", assigneeID, err)
	}
	return tasks, nil
}

// ListOpenWithTerm lists every open dated task; the nightly calendar
// sweep walks this set to repair drift.
func (r *TaskRepository) ListOpenWithTerm(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND term IS NOT NULL", model.StatusDone).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("open dated tasks: %w", err)
	}
	return tasks, nil
}

// ListDoneWithEventRef lists closed tasks still holding a calendar
// reference, so the sweep can delete their orphaned events.
func (r *TaskRepository) ListDoneWithEventRef(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ? AND google_event_id IS NOT NULL", model.StatusDone).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("done tasks with event: %w", err)
	}
	return tasks, nil
}

// UpdateTerm moves a task's deadline instant.
func (r *TaskRepository) UpdateTerm(ctx context.Context, taskID uint, term time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("term", term).Error; err != nil {
		return fmt.Errorf("update term of task %d: %w", taskID, err)
	}
	return nil
}

// CompareAndSwapEventID attaches a calendar event to a task only if the
// stored event id still equals expected (nil meaning "no event"). It
// reports whether the swap won. This conditional update is the sole
// serialization point of the race-safe attach protocol; no other lock
// guards calendar creation.
func (r *TaskRepository) CompareAndSwapEventID(ctx context.Context, taskID uint, expected, newID, newLink *string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID)
	if expected == nil {
		q = q.Where("google_event_id IS NULL")
	} else {
		q = q.Where("google_event_id = ?", *expected)
	}
	res := q.Updates(map[string]any{
		"google_event_id":   newID,
		"google_event_link": newLink,
	})
	if res.Error != nil {
		return false, fmt.Errorf("attach event to task %d: %w", taskID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ClearEventRef drops the calendar correlation fields unconditionally.
func (r *TaskRepository) ClearEventRef(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]any{
			"google_event_id":   nil,
			"google_event_link": nil,
		}).Error; err != nil {
		return fmt.Errorf("clear event ref of task %d: %w", taskID, err)
	}
	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, taskID).Error; err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	return nil
}
