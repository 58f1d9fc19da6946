// Package notify delivers aggregated planner messages over Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-delegator/internal/cache"
	"task-delegator/internal/model"
	"task-delegator/internal/repository"
	"task-delegator/internal/service"
)

const (
	iconReminder = "🔔"
	iconTask     = "⏳"
	iconRollover = "📆"
)

// Telegram implements service.Notifier. Assignee profiles are resolved
// through a short TTL cache so a busy slot does not hammer the store
// for display names.
type Telegram struct {
	api       *tgbotapi.BotAPI
	assignees *repository.AssigneeRepository
	profiles  *cache.TTL[uint, model.Assignee]
}

func New(token string, assignees *repository.AssigneeRepository) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{
		api:       api,
		assignees: assignees,
		profiles:  cache.New[uint, model.Assignee](10*time.Minute, nil),
	}, nil
}

func (t *Telegram) SendReminder(ctx context.Context, assigneeID uint, dateISO, slotID string, items []service.ReminderItem) error {
	assignee, err := t.assignee(ctx, assigneeID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Task reminder</b> · %s\n\n", iconReminder, dateISO)
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s", iconTask, html.EscapeString(strings.TrimSpace(item.Title)))
		if item.DeadlineTime != "" {
			fmt.Fprintf(&b, " — by %s", item.DeadlineTime)
		}
		b.WriteByte('\n')
	}

	return t.send(assignee.TelegramID, b.String())
}

func (t *Telegram) SendRolloverReport(ctx context.Context, assigneeID uint, moves []service.Move) error {
	assignee, err := t.assignee(ctx, assigneeID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Moved to tomorrow</b>\n\n", iconRollover)
	for _, move := range moves {
		fmt.Fprintf(&b, "• %s (%s → %s)\n",
			html.EscapeString(strings.TrimSpace(move.Title)), move.FromISO, move.ToISO)
	}

	return t.send(assignee.TelegramID, b.String())
}

func (t *Telegram) assignee(ctx context.Context, id uint) (model.Assignee, error) {
	if a, ok := t.profiles.Get(id); ok {
		return a, nil
	}
	a, err := t.assignees.FindByID(ctx, id)
	if err != nil {
		return model.Assignee{}, err
	}
	t.profiles.Set(id, *a)
	return *a, nil
}

func (t *Telegram) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
