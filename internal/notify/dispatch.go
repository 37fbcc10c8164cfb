package notify

import (
	"context"

	"appwatch/internal/config"
	"appwatch/pkg/logx"
)

// Channel is one delivery mechanism. Send failures are soft: the dispatcher
// logs them and the run carries on to the cache save.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher routes messages to the configured channel. A missing
// credential or an unknown method is a logged skip, never an error up the
// stack.
type Dispatcher struct {
	method  string
	channel Channel
	log     logx.Logger
}

func NewDispatcher(cfg *config.Config, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	d := &Dispatcher{method: cfg.PushMethod, log: log}

	switch cfg.PushMethod {
	case config.MethodBark:
		if cfg.Bark.Key == "" {
			log.Warn("bark selected but BARK_KEY is not set, pushes will be skipped")
			break
		}
		d.channel = NewBarkChannel(BarkConfig{Key: cfg.Bark.Key}, log)
	case config.MethodTelegram:
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
			log.Warn("telegram selected but bot token or chat id is not set, pushes will be skipped")
			break
		}
		ch, err := NewTelegramChannel(TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		}, log)
		if err != nil {
			log.Warn("telegram channel unavailable, pushes will be skipped", logx.Err(err))
			break
		}
		d.channel = ch
	default:
		log.Warn("unknown push method, pushes will be skipped", logx.String("method", cfg.PushMethod))
	}

	return d
}

// NewDispatcherWithChannel wires an explicit channel (tests, embedding).
func NewDispatcherWithChannel(ch Channel, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	d := &Dispatcher{log: log, channel: ch}
	if ch != nil {
		d.method = ch.Name()
	}
	return d
}

// Dispatch sends msg through the configured channel and reports success.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	if d.channel == nil {
		d.log.Warn("push skipped: no usable channel", logx.String("method", d.method))
		return false
	}

	if err := d.channel.Send(ctx, msg); err != nil {
		d.log.Warn("push failed",
			logx.String("channel", d.channel.Name()),
			logx.String("title", msg.Title),
			logx.Err(err))
		return false
	}

	d.log.Info("push sent",
		logx.String("channel", d.channel.Name()),
		logx.String("title", msg.Title))
	return true
}
