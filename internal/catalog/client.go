package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"appwatch/pkg/logx"
)

const (
	_lookupBaseURL  = "https://itunes.apple.com/lookup"
	_userAgent      = "appwatch/1.0"
	_defaultTimeout = 8 * time.Second
	_retryBase      = 500 * time.Millisecond
)

// LookupResult is one catalog hit, valid for the current run only.
type LookupResult struct {
	Name         string
	Version      string
	ReleaseNotes string
	// ReleaseDate is the raw ISO-8601 string as returned by the catalog.
	ReleaseDate string
	StoreURL    string
	IconURL     string
	// Region is the storefront code the app was found in.
	Region string
}

type lookupResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []lookupEntry `json:"results"`
}

type lookupEntry struct {
	TrackName                 string `json:"trackName"`
	Version                   string `json:"version"`
	ReleaseNotes              string `json:"releaseNotes"`
	TrackViewURL              string `json:"trackViewUrl"`
	CurrentVersionReleaseDate string `json:"currentVersionReleaseDate"`
	ArtworkURL100             string `json:"artworkUrl100"`
}

type ClientConfig struct {
	// BaseURL overrides the catalog endpoint (tests).
	BaseURL string

	Timeout time.Duration

	// RetryMax is the attempt budget per request (transport errors and
	// transient statuses only; lookups are idempotent GETs).
	RetryMax int

	// RatePerSec paces outbound lookups so region fallback stays polite.
	RatePerSec int
}

type Client struct {
	http    *http.Client
	baseURL string

	retryMax int
	limiter  *rate.Limiter

	log logx.Logger
}

func NewClient(cfg ClientConfig, log logx.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = _lookupBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = _defaultTimeout
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		retryMax: cfg.RetryMax,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		log:      log,
	}
}

// Lookup queries one storefront for one app id. found=false with a nil
// error means the storefront answered but has no such app.
func (c *Client) Lookup(ctx context.Context, appID, region string) (*LookupResult, bool, error) {
	params := url.Values{}
	params.Set("id", appID)
	params.Set("country", region)
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, false, err
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.ResultCount <= 0 || len(resp.Results) == 0 {
		return nil, false, nil
	}

	entry := resp.Results[0]
	return &LookupResult{
		Name:         entry.TrackName,
		Version:      entry.Version,
		ReleaseNotes: entry.ReleaseNotes,
		ReleaseDate:  entry.CurrentVersionReleaseDate,
		StoreURL:     entry.TrackViewURL,
		IconURL:      entry.ArtworkURL100,
		Region:       region,
	}, true, nil
}

func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retryMax; attempt++ {
		if attempt > 0 {
			delay := _retryBase << (attempt - 1)
			c.log.Debug("retrying lookup",
				logx.Int("attempt", attempt+1),
				logx.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.getOnce(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, reqURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", _userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transientStatus(resp.StatusCode), fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	return body, false, nil
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
