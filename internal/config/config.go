package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Push method selector values. Anything else is rejected at dispatch time,
// not here, so a typo still lets the run reach the cache save.
const (
	MethodBark     = "bark"
	MethodTelegram = "telegram"
)

// TestAppID is used when no app ids are configured at all (WeChat).
const TestAppID = "414478124"

type Config struct {
	// PushMethod selects the notification channel: "bark" or "telegram".
	PushMethod string `yaml:"push_method"`

	AppIDs []string `yaml:"app_ids"`

	// RegionTryLimit bounds how many storefront regions a lookup may try.
	RegionTryLimit int `yaml:"region_try_limit"`

	CacheFile string `yaml:"cache_file"`

	Bark     BarkConfig     `yaml:"bark"`
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

type BarkConfig struct {
	Key string `yaml:"key"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// HTTPConfig tunes the outbound transport. Retries apply only to the
// idempotent catalog lookups, never to notification posts.
type HTTPConfig struct {
	// Timeout is a Go duration string (e.g. "8s", "1m").
	Timeout    string `yaml:"timeout"`
	RetryMax   int    `yaml:"retry_max"`
	RatePerSec int    `yaml:"rate_per_sec"`
}

// TimeoutDuration resolves the per-request timeout, defaulting to 8s.
func (h HTTPConfig) TimeoutDuration() time.Duration {
	d, err := ParseDurationOrDefault("http.timeout", h.Timeout, 8*time.Second)
	if err != nil {
		return 8 * time.Second
	}
	return d
}

type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	FileEnabled bool   `yaml:"file_enabled"`
}

func NewConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig reads the optional YAML file, overlays environment variables
// (env always wins), then applies defaults and clamping. An empty filename
// means env-only.
func LoadConfig(filename string) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(filename) != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := ParseDurationField("http.timeout", c.HTTP.Timeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if env := strings.TrimSpace(os.Getenv("PUSH_METHOD")); env != "" {
		c.PushMethod = env
	}
	if env := strings.TrimSpace(os.Getenv("BARK_KEY")); env != "" {
		c.Bark.Key = env
	}
	if env := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); env != "" {
		c.Telegram.BotToken = env
	}
	if env := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); env != "" {
		c.Telegram.ChatID = env
	}
	if env := strings.TrimSpace(os.Getenv("APP_IDS")); env != "" {
		c.AppIDs = SplitIDs(env)
	}
	if env := strings.TrimSpace(os.Getenv("REGION_TRY_LIMIT")); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			c.RegionTryLimit = n
		}
	}
	if env := strings.TrimSpace(os.Getenv("CACHE_FILE")); env != "" {
		c.CacheFile = env
	}
	if env := strings.TrimSpace(os.Getenv("LOG_LEVEL")); env != "" {
		c.Log.Level = env
	}
}

func (c *Config) applyDefaults() {
	c.PushMethod = strings.ToLower(strings.TrimSpace(c.PushMethod))
	if c.PushMethod == "" {
		c.PushMethod = MethodBark
	}
	if c.RegionTryLimit == 0 {
		c.RegionTryLimit = 6
	}
	if strings.TrimSpace(c.CacheFile) == "" {
		c.CacheFile = "./version_cache.json"
	}
	if c.HTTP.RetryMax <= 0 {
		c.HTTP.RetryMax = 3
	}
	if c.HTTP.RatePerSec <= 0 {
		c.HTTP.RatePerSec = 5
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
}

// SplitIDs parses a comma-separated app-id list, dropping empty entries.
func SplitIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
