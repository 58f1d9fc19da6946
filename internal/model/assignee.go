package model

import "time"

// Assignee stores the notification target for delegated tasks.
type Assignee struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	Name       string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
