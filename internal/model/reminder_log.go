package model

import "time"

// ReminderLog is the append-only idempotency ledger for notifications.
//
// A row means "a notification for this (task, date, slot) was claimed";
// the composite unique index is the only serialization point between
// concurrent scheduler ticks. Rows are deleted only to undo a claim
// after a failed delivery, never updated.
type ReminderLog struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    uint   `gorm:"uniqueIndex:idx_reminder_claim"`
	DateISO   string `gorm:"column:date_iso;uniqueIndex:idx_reminder_claim;size:10"`
	Slot      string `gorm:"uniqueIndex:idx_reminder_claim;size:16"`
	CreatedAt time.Time
}
