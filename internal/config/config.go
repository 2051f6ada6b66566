// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Category is one weighted keyword group. Keywords containing whitespace are
// treated as phrases; declaration order breaks score ties.
type Category struct {
	Name     string   `yaml:"name" validate:"required"`
	Weight   float64  `yaml:"weight" validate:"gt=0"`
	Keywords []string `yaml:"keywords" validate:"min=1"`
}

type FilterConfig struct {
	Categories    []Category `yaml:"categories" validate:"min=1,dive"`
	Exclusions    []string   `yaml:"exclusions"`
	CacheCapacity int        `yaml:"cache_capacity" validate:"gte=0"`
}

type DedupConfig struct {
	// FuzzyWindowDays is the posted-date window for treating two listings
	// with different URLs as the same re-surfaced posting.
	FuzzyWindowDays int `yaml:"fuzzy_window_days" validate:"gte=0"`
}

type StealthConfig struct {
	Warmup     bool `yaml:"warmup"`
	MinPauseMs int  `yaml:"min_pause_ms"`
	MaxPauseMs int  `yaml:"max_pause_ms"`
}

// SourceConfig is the per-source scraper profile.
type SourceConfig struct {
	Enabled     bool          `yaml:"enabled"`
	PageCap     int           `yaml:"page_cap" validate:"gte=0"`
	JobCap      int           `yaml:"job_cap" validate:"gte=0"`
	TimeoutMs   int           `yaml:"timeout_ms" validate:"gte=0"`
	Retries     int           `yaml:"retries" validate:"gte=0"`
	DetailBatch int           `yaml:"detail_batch" validate:"gte=0,lte=10"`
	Stealth     StealthConfig `yaml:"stealth"`
}

type BrowserConfig struct {
	Headless    bool   `yaml:"headless"`
	CookiesPath string `yaml:"cookies_path"`
}

type Config struct {
	DatabaseURL    string                  `yaml:"-"`
	TelegramToken  string                  `yaml:"telegram_token"`
	TelegramChatID int64                   `yaml:"telegram_chat_id"`
	Browser        BrowserConfig           `yaml:"browser"`
	Filter         FilterConfig            `yaml:"filter" validate:"required"`
	Dedup          DedupConfig             `yaml:"dedup"`
	Sources        map[string]SourceConfig `yaml:"sources" validate:"min=1"`
}

const (
	defaultCacheCapacity   = 10000
	defaultFuzzyWindowDays = 3
	defaultTimeoutMs       = 30000
	defaultDetailBatch     = 4
)

// Load reads .env, parses the YAML config file and validates it.
// A missing or malformed keyword file is fatal: no run is attempted.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	//Override with env vars
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chat := os.Getenv("TELEGRAM_CHAT_ID"); chat != "" {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid config %s: TELEGRAM_CHAT_ID %q: %w", path, chat, err)
		}
		cfg.TelegramChatID = id
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// Phrase keywords must survive as declared: reject empty entries early
	// rather than silently matching everything downstream.
	for _, cat := range cfg.Filter.Categories {
		for _, kw := range cat.Keywords {
			if kw == "" {
				return nil, fmt.Errorf("invalid config %s: category %q has an empty keyword", path, cat.Name)
			}
		}
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Filter.CacheCapacity == 0 {
		c.Filter.CacheCapacity = defaultCacheCapacity
	}
	if c.Dedup.FuzzyWindowDays == 0 {
		c.Dedup.FuzzyWindowDays = defaultFuzzyWindowDays
	}
	if c.Browser.CookiesPath == "" {
		c.Browser.CookiesPath = ".cookies"
	}
	for name, src := range c.Sources {
		if src.TimeoutMs == 0 {
			src.TimeoutMs = defaultTimeoutMs
		}
		if src.DetailBatch == 0 {
			src.DetailBatch = defaultDetailBatch
		}
		if src.Stealth.MinPauseMs == 0 {
			src.Stealth.MinPauseMs = 500
		}
		if src.Stealth.MaxPauseMs == 0 {
			src.Stealth.MaxPauseMs = 2000
		}
		c.Sources[name] = src
	}
}

// Source returns the profile for a named source, falling back to a
// conservative default when the file does not mention it.
func (c *Config) Source(name string) SourceConfig {
	if src, ok := c.Sources[name]; ok {
		return src
	}
	return SourceConfig{
		Enabled:     false,
		TimeoutMs:   defaultTimeoutMs,
		DetailBatch: defaultDetailBatch,
		Stealth:     StealthConfig{MinPauseMs: 500, MaxPauseMs: 2000},
	}
}
