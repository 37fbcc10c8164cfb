package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"appwatch/pkg/logx"
)

const (
	_barkBaseURL = "https://api.day.app"
	_sendTimeout = 10 * time.Second
)

// BarkChannel posts to the Bark push service: form-encoded POST to
// base/<key>, success = HTTP 200. Sends are not retried (not idempotent).
type BarkChannel struct {
	baseURL string
	key     string
	http    *http.Client
	log     logx.Logger
}

type BarkConfig struct {
	Key string

	// BaseURL overrides the service endpoint (tests).
	BaseURL string
}

func NewBarkChannel(cfg BarkConfig, log logx.Logger) *BarkChannel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = _barkBaseURL
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &BarkChannel{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     strings.TrimSpace(cfg.Key),
		http:    &http.Client{Timeout: _sendTimeout},
		log:     log,
	}
}

func (b *BarkChannel) Name() string { return "bark" }

func (b *BarkChannel) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("title", msg.Title)
	form.Set("body", msg.Body)
	form.Set("group", "App Store Updates")
	form.Set("sound", "bell")
	form.Set("isArchive", "1")
	if msg.URL != "" {
		form.Set("url", msg.URL)
	}
	if msg.IconURL != "" {
		form.Set("icon", msg.IconURL)
	}

	endpoint := b.baseURL + "/" + b.key
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	return nil
}
