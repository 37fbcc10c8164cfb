package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appwatch/pkg/logx"
)

func TestEscapeMarkdownV2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", EscapeMarkdownV2(""))
	assert.Equal(t, "plain text", EscapeMarkdownV2("plain text"))

	// Every special character must end up preceded by exactly one backslash.
	escaped := EscapeMarkdownV2(markdownV2Special)
	runes := []rune(markdownV2Special)
	require.Len(t, escaped, 2*len(runes))
	for i, ch := range runes {
		assert.Equal(t, "\\"+string(ch), escaped[2*i:2*i+2], "char %q", ch)
	}

	assert.Equal(t, `v1\.2\.3 \(build 7\)`, EscapeMarkdownV2("v1.2.3 (build 7)"))
}

func newTelegramTestChannel(t *testing.T, handler http.HandlerFunc) *TelegramChannel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ch, err := NewTelegramChannel(TelegramConfig{
		BotToken: "test-token",
		ChatID:   "4242",
		APIURL:   srv.URL,
	}, logx.Nop())
	require.NoError(t, err)
	return ch
}

func okMessageJSON() string {
	return `{"ok":true,"result":{"message_id":1,"chat":{"id":4242,"type":"private"}}}`
}

func TestTelegramSend(t *testing.T) {
	t.Parallel()
	var gotPath string
	var payload map[string]any
	ch := newTelegramTestChannel(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		fmt.Fprint(w, okMessageJSON())
	})

	err := ch.Send(context.Background(), Message{Title: "WeChat updated!", Body: "v8.0.49 (cn)"})
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "MarkdownV2", payload["parse_mode"])

	text, _ := payload["text"].(string)
	assert.True(t, strings.HasPrefix(text, "*WeChat updated"), "text = %q", text)
	assert.Contains(t, text, `\(cn\)`)
	assert.Contains(t, text, `v8\.0\.49`)
}

func TestTelegramSendAPIFailure(t *testing.T) {
	t.Parallel()
	ch := newTelegramTestChannel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`)
	})

	err := ch.Send(context.Background(), Message{Title: "t", Body: "b"})
	assert.Error(t, err)
}

func TestNewTelegramChannelBadChatID(t *testing.T) {
	t.Parallel()
	_, err := NewTelegramChannel(TelegramConfig{BotToken: "tok", ChatID: "not-a-number"}, logx.Nop())
	assert.Error(t, err)
}
