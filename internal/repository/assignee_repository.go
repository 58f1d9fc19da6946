package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-delegator/internal/model"
)

// AssigneeRepository handles CRUD for assignees.
type AssigneeRepository struct {
	db *gorm.DB
}

func NewAssigneeRepository(db *gorm.DB) *AssigneeRepository {
	return &AssigneeRepository{db: db}
}

// UpsertFromTelegram finds or creates an assignee by Telegram id and
// refreshes the profile fields.
func (r *AssigneeRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, name string) (*model.Assignee, error) {
	var assignee model.Assignee
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&assignee).Error
	switch {
	case err == nil:
		if err := db.Model(&assignee).Update("name", name).Error; err != nil {
			return nil, fmt.Errorf("update assignee: %w", err)
		}
		return &assignee, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignee = model.Assignee{TelegramID: telegramID, Name: name}
		if err := db.Create(&assignee).Error; err != nil {
			return nil, fmt.Errorf("create assignee: %w", err)
		}
		return &assignee, nil
	default:
		return nil, fmt.Errorf("find assignee: %w", err)
	}
}

func (r *AssigneeRepository) FindByID(ctx context.Context, id uint) (*model.Assignee, error) {
	var assignee model.Assignee
	if err := r.db.WithContext(ctx).First(&assignee, id).Error; err != nil {
		return nil, fmt.Errorf("find assignee %d: %w", id, err)
	}
	return &assignee, nil
}

func (r *AssigneeRepository) ListAll(ctx context.Context) ([]model.Assignee, error) {
	var assignees []model.Assignee
	if err := r.db.WithContext(ctx).Order("id").Find(&assignees).Error; err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	return assignees, nil
}
