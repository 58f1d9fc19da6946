package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-delegator/internal/model"
)

func newTaskService(env *testEnv) *TaskService {
	return NewTaskService(env.tasks, env.clk, NewCalendarSyncService(env.tasks, nil, env.clk))
}

func TestCreate_NormalizesTermAndAnchor(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	task, err := svc.Create(context.Background(), 1, TaskInput{
		Title:      "pay invoices",
		Urgency:    model.UrgencyAsap,
		DateISO:    "2024-03-20",
		Recurrence: model.RecurrenceMonthly,
	})
	require.NoError(t, err)

	require.NotNil(t, task.Term)
	assert.True(t, task.Term.Equal(env.midnight(t, "2024-03-20")))
	require.NotNil(t, task.RecurrenceAnchor)
	assert.True(t, task.RecurrenceAnchor.Equal(*task.Term))
	assert.Equal(t, model.StatusPending, task.Status)
}

func TestCreate_RequiresTitle(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	_, err := svc.Create(context.Background(), 1, TaskInput{})
	assert.Error(t, err)
}

func TestComplete_OneOffBecomesDone(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)
	term := env.midnight(t, "2024-03-15")
	task := env.seedTask(t, model.Task{AssigneeID: 1, Title: "t", Status: model.StatusPending, Term: &term})

	done, err := svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)
}

func TestComplete_RecurringRollsForwardWithClamp(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	anchor := env.midnight(t, "2024-01-31")
	task := env.seedTask(t, model.Task{
		AssigneeID:       1,
		Title:            "monthly report",
		Status:           model.StatusPending,
		Term:             &anchor,
		Recurrence:       model.RecurrenceMonthly,
		RecurrenceAnchor: &anchor,
	})

	// Jan 31 rolls to the clamped Feb 29 (leap year), staying open.
	rolled, err := svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, rolled.Status)
	assert.True(t, rolled.Term.Equal(env.midnight(t, "2024-02-29")))
	assert.True(t, rolled.RecurrenceAnchor.Equal(*rolled.Term))

	// The clamp does not snap back: Feb 29 rolls to Mar 29, not Mar 31.
	rolled, err = svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, rolled.Term.Equal(env.midnight(t, "2024-03-29")))
}

func TestComplete_RecurringWithoutAnchorFallsBackToTerm(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	term := env.midnight(t, "2024-03-15")
	task := env.seedTask(t, model.Task{AssigneeID: 1, Title: "weekly", Status: model.StatusPending, Term: &term, Recurrence: model.RecurrenceWeekly})

	rolled, err := svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, rolled.Status)
	assert.True(t, rolled.Term.Equal(env.midnight(t, "2024-03-22")))
}

func TestComplete_RecurringDatelessClosesLikeOneOff(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	task := env.seedTask(t, model.Task{AssigneeID: 1, Title: "t", Status: model.StatusPending, Recurrence: model.RecurrenceDaily})

	done, err := svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)
}

func TestReschedule_KeepsAnchorAligned(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	term := env.midnight(t, "2024-03-10")
	task := env.seedTask(t, model.Task{
		AssigneeID:       1,
		Title:            "t",
		Status:           model.StatusOverdue,
		Term:             &term,
		Recurrence:       model.RecurrenceMonthly,
		RecurrenceAnchor: &term,
	})

	moved, err := svc.Reschedule(context.Background(), task.ID, "2024-03-25")
	require.NoError(t, err)
	assert.True(t, moved.Term.Equal(env.midnight(t, "2024-03-25")))
	assert.True(t, moved.RecurrenceAnchor.Equal(*moved.Term))
	assert.Equal(t, model.StatusPending, moved.Status)
}

func TestSetRecurrence_AnchorFollowsTerm(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	term := env.midnight(t, "2024-03-20")
	task := env.seedTask(t, model.Task{AssigneeID: 1, Title: "t", Status: model.StatusPending, Term: &term})

	updated, err := svc.SetRecurrence(context.Background(), task.ID, model.RecurrenceQuarterly)
	require.NoError(t, err)
	require.NotNil(t, updated.RecurrenceAnchor)
	assert.True(t, updated.RecurrenceAnchor.Equal(term))

	updated, err = svc.SetRecurrence(context.Background(), task.ID, model.RecurrenceNone)
	require.NoError(t, err)
	assert.Nil(t, updated.RecurrenceAnchor)
}

func TestSetDeadlineTime_Validates(t *testing.T) {
	env := newTestEnv(t, localTime(2024, 3, 15, 12, 0, 0))
	svc := newTaskService(env)

	task := env.seedTask(t, model.Task{AssigneeID: 1, Title: "t", Status: model.StatusPending})

	_, err := svc.SetDeadlineTime(context.Background(), task.ID, "25:99")
	assert.Error(t, err)

	updated, err := svc.SetDeadlineTime(context.Background(), task.ID, "15:30")
	require.NoError(t, err)
	assert.Equal(t, "15:30", updated.DeadlineTime)
}
