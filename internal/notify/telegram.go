package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramSender is the subset of the bot API the notifier uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers alerts to chat recipients. Recipients are numeric chat
// identifiers rendered as strings.
type Telegram struct {
	api telegramSender
}

// NewTelegram connects the notifier to the bot API with the given token.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api}, nil
}

// NewTelegramWithSender wires a custom sender, used by tests.
func NewTelegramWithSender(sender telegramSender) *Telegram {
	return &Telegram{api: sender}
}

// Notify implements Notifier.
func (t *Telegram) Notify(ctx context.Context, recipients []string, alert Alert) error {
	text := alert.Text()
	var errs []error
	for _, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		chatID, err := strconv.ParseInt(recipient, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("telegram recipient %q is not a chat id", recipient))
			continue
		}
		if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("telegram %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
