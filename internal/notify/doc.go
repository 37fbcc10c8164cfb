// Package notify formats and delivers update notifications.
//
// Formatting and delivery are kept separate: the formatter turns change
// records into a title/body Message, and the dispatcher hands the Message
// to whichever channel the configuration selected (Bark key-push or a
// Telegram bot). Channels fail soft; a lost notification never blocks the
// cache save.
package notify
