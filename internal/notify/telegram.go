package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"appwatch/pkg/logx"
)

// markdownV2Special is the full MarkdownV2 escape set. Every one of these
// must be backslash-prefixed in message text.
const markdownV2Special = "_*[]()~`>#+-=|{}.!\\"

// EscapeMarkdownV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, ch := range text {
		if strings.ContainsRune(markdownV2Special, ch) {
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// TelegramChannel delivers messages through the Telegram bot API as
// *title*\n\nbody in MarkdownV2, link previews enabled.
type TelegramChannel struct {
	bot    *tele.Bot
	chatID int64
	log    logx.Logger
}

type TelegramConfig struct {
	BotToken string
	ChatID   string

	// APIURL overrides the bot API endpoint (tests).
	APIURL string
}

func NewTelegramChannel(cfg TelegramConfig, log logx.Logger) (*TelegramChannel, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(cfg.ChatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id %q: %w", cfg.ChatID, err)
	}

	// Offline skips the getMe round-trip at construction; a one-shot run
	// only ever sends, so a bad token surfaces on the first send instead.
	b, err := tele.NewBot(tele.Settings{
		Token:   strings.TrimSpace(cfg.BotToken),
		URL:     cfg.APIURL,
		Offline: true,
		Client:  &http.Client{Timeout: _sendTimeout},
	})
	if err != nil {
		return nil, err
	}

	return &TelegramChannel{bot: b, chatID: chatID, log: log}, nil
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Send(ctx context.Context, msg Message) error {
	_ = ctx // telebot manages its own request lifecycle

	text := fmt.Sprintf("*%s*\n\n%s", EscapeMarkdownV2(msg.Title), EscapeMarkdownV2(msg.Body))

	_, err := t.bot.Send(&tele.Chat{ID: t.chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdownV2,
		DisableWebPagePreview: false,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
