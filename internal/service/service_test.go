package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-delegator/internal/calendar"
	"task-delegator/internal/clock"
	"task-delegator/internal/model"
	"task-delegator/internal/repository"
)

// testEnv wires an in-memory database with a controllable civil clock.
type testEnv struct {
	db        *gorm.DB
	tasks     *repository.TaskRepository
	claims    *repository.ReminderLogRepository
	assignees *repository.AssigneeRepository
	clk       *clock.Clock
	now       *time.Time // UTC instant returned by the clock
}

func newTestEnv(t *testing.T, utcNow time.Time) *testEnv {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection: sqlite ":memory:" is per-connection, and a single
	// connection serializes concurrent writers like a shared database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		db:        db,
		tasks:     repository.NewTaskRepository(db),
		claims:    repository.NewReminderLogRepository(db),
		assignees: repository.NewAssigneeRepository(db),
		now:       &utcNow,
	}
	env.clk = clock.NewFixedAt(-3, func() time.Time { return *env.now })
	return env
}

// localTime builds the UTC instant at which the planner's UTC-3 wall
// clock shows the given civil time.
func localTime(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.FixedZone("UTC-3", -3*3600)).UTC()
}

func (e *testEnv) midnight(t *testing.T, dateISO string) time.Time {
	t.Helper()
	m, err := e.clk.Midnight(dateISO)
	require.NoError(t, err)
	return m
}

func (e *testEnv) seedTask(t *testing.T, task model.Task) *model.Task {
	t.Helper()
	require.NoError(t, e.tasks.Create(context.Background(), &task))
	return &task
}

func (e *testEnv) claimCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.ReminderLog{}).Count(&count).Error)
	return count
}

type reminderCall struct {
	assigneeID uint
	dateISO    string
	slotID     string
	items      []ReminderItem
}

type rolloverCall struct {
	assigneeID uint
	moves      []Move
}

// fakeNotifier records deliveries and optionally fails them.
type fakeNotifier struct {
	mu        sync.Mutex
	fail      bool
	reminders []reminderCall
	rollovers []rolloverCall
}

func (f *fakeNotifier) SendReminder(_ context.Context, assigneeID uint, dateISO, slotID string, items []ReminderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("delivery down")
	}
	f.reminders = append(f.reminders, reminderCall{assigneeID, dateISO, slotID, items})
	return nil
}

func (f *fakeNotifier) SendRolloverReport(_ context.Context, assigneeID uint, moves []Move) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("delivery down")
	}
	f.rollovers = append(f.rollovers, rolloverCall{assigneeID, moves})
	return nil
}

func (f *fakeNotifier) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeNotifier) reminderCalls() []reminderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reminderCall(nil), f.reminders...)
}

func (f *fakeNotifier) rolloverCalls() []rolloverCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rolloverCall(nil), f.rollovers...)
}

// fakeCalendar implements calendar.API over an in-memory event map.
type fakeCalendar struct {
	mu       sync.Mutex
	seq      int
	live     map[string]calendar.Event
	inserts  int
	patches  int
	deletes  int
	onInsert func(id string) // runs after an insert, before it returns
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{live: make(map[string]calendar.Event)}
}

func (f *fakeCalendar) Insert(_ context.Context, ev calendar.Event) (string, string, error) {
	f.mu.Lock()
	f.seq++
	f.inserts++
	id := fmt.Sprintf("ev-%d", f.seq)
	f.live[id] = ev
	hook := f.onInsert
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return id, "https://calendar.example/" + id, nil
}

func (f *fakeCalendar) Patch(_ context.Context, id string, ev calendar.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches++
	if _, ok := f.live[id]; !ok {
		return fmt.Errorf("patch %s: %w", id, calendar.ErrEventNotFound)
	}
	f.live[id] = ev
	return nil
}

func (f *fakeCalendar) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if _, ok := f.live[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, calendar.ErrEventNotFound)
	}
	delete(f.live, id)
	return nil
}

func (f *fakeCalendar) liveIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.live))
	for id := range f.live {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeCalendar) drop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, id)
}

func strPtr(s string) *string { return &s }
