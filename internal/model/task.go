package model

import "time"

// Status describes where a task sits in its lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusBlocked Status = "blocked"
	StatusDone    Status = "done"
	StatusOverdue Status = "overdue"
)

// Urgency selects which reminder slots apply to a task.
type Urgency string

const (
	UrgencyLight Urgency = "light"
	UrgencyAsap  Urgency = "asap"
	UrgencyTurbo Urgency = "turbo"
)

// Recurrence names how a task's deadline advances when it is completed.
type Recurrence string

const (
	RecurrenceNone       Recurrence = ""
	RecurrenceDaily      Recurrence = "daily"
	RecurrenceWeekly     Recurrence = "weekly"
	RecurrenceBiweekly   Recurrence = "biweekly"
	RecurrenceMonthly    Recurrence = "monthly"
	RecurrenceQuarterly  Recurrence = "quarterly"
	RecurrenceSemiannual Recurrence = "semiannual"
	RecurrenceAnnual     Recurrence = "annual"
)

// Task represents a delegated item of work.
//
// Term is the deadline date stored as an instant normalized to local
// midnight in the planner timezone. RecurrenceAnchor tracks Term while
// recurrence is active and is nil otherwise. GoogleEventID and
// GoogleEventLink are both nil iff no calendar event is believed to exist.
type Task struct {
	ID               uint `gorm:"primaryKey"`
	AssigneeID       uint `gorm:"index"`
	Title            string
	Description      string
	Status           Status  `gorm:"default:pending;index"`
	Urgency          Urgency `gorm:"default:light;index"`
	Term             *time.Time
	DeadlineTime     string // "HH:MM" in the planner timezone, empty when unset
	Recurrence       Recurrence
	RecurrenceAnchor *time.Time
	GoogleEventID    *string
	GoogleEventLink  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Open reports whether the task still needs attention.
func (t *Task) Open() bool {
	return t.Status != StatusDone
}

// ShouldHaveEvent reports whether a calendar event must exist for the task.
func (t *Task) ShouldHaveEvent() bool {
	return t.Status != StatusDone && t.Term != nil
}

// Recurring reports whether completion rolls the deadline forward.
func (t *Task) Recurring() bool {
	return t.Recurrence != RecurrenceNone
}
