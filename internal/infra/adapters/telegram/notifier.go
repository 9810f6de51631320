package telegram

import (
	"context"
	"errors"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zoo-assistant/internal/config"
	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*BotNotifier)(nil)

// telegram rejects messages longer than this many characters
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotNotifier posts alerts to a single keeper chat.
type BotNotifier struct {
	bot    sender
	chatID int64
}

func NewBotNotifier(cfg *config.NotifyConfig) (*BotNotifier, error) {
	if cfg == nil || cfg.TelegramToken == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	return &BotNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (n *BotNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, truncate(text, maxMessageLen))
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	return err
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
