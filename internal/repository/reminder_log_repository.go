package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-delegator/internal/model"
)

// ClaimResult is the typed outcome of a dedup-log insert attempt.
type ClaimResult int

const (
	// Claimed means this caller won the right to deliver.
	Claimed ClaimResult = iota
	// AlreadyClaimed means another caller holds the triple; skip delivery.
	AlreadyClaimed
)

// ReminderLogRepository is the append-only idempotency ledger for
// notifications, keyed by (task, date, slot).
type ReminderLogRepository struct {
	db *gorm.DB
}

func NewReminderLogRepository(db *gorm.DB) *ReminderLogRepository {
	return &ReminderLogRepository{db: db}
}

// TryClaim inserts the claim row. A uniqueness violation is not an
// error: it means a concurrent caller already owns this (task, date,
// slot) and delivery must be skipped. Under concurrent callers exactly
// one observes Claimed.
func (r *ReminderLogRepository) TryClaim(ctx context.Context, taskID uint, dateISO, slot string) (ClaimResult, error) {
	entry := model.ReminderLog{TaskID: taskID, DateISO: dateISO, Slot: slot}
	err := r.db.WithContext(ctx).Create(&entry).Error
	switch {
	case err == nil:
		return Claimed, nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return AlreadyClaimed, nil
	default:
		return AlreadyClaimed, fmt.Errorf("claim reminder (%d, %s, %s): %w", taskID, dateISO, slot, err)
	}
}

// Release undoes a claim after a failed delivery so a later tick can
// retry. Best effort; releasing a non-existent claim is a no-op.
func (r *ReminderLogRepository) Release(ctx context.Context, taskID uint, dateISO, slot string) error {
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND date_iso = ? AND slot = ?", taskID, dateISO, slot).
		Delete(&model.ReminderLog{}).Error; err != nil {
		return fmt.Errorf("release reminder (%d, %s, %s): %w", taskID, dateISO, slot, err)
	}
	return nil
}
