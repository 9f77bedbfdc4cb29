// Load envs from .env
// Load YAML config
// Override with env vars, fill defaults
// Validate credentials

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// ErrMissingCredential marks a fatal initialization failure.
var ErrMissingCredential = errors.New("missing required credential")

type Config struct {
	//Credentials, env only
	AnthropicAPIKey       string `yaml:"-"`
	GroqAPIKey            string `yaml:"-"`
	GitHubToken           string `yaml:"-"`
	GoogleCredentialsJSON string `yaml:"-"`
	GoogleSheetID         string `yaml:"google_sheet_id"`
	DatabaseURL           string `yaml:"-"`
	TelegramToken         string `yaml:"-"`
	TelegramChatID        int64  `yaml:"telegram_chat_id"`

	AI      AIConfig      `yaml:"ai"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Sources SourcesConfig `yaml:"sources"`
	Enrich  EnrichConfig  `yaml:"enrich"`
	Thesis  ThesisConfig  `yaml:"thesis"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Server  ServerConfig  `yaml:"server"`
}

type AIConfig struct {
	Provider  string        `yaml:"provider"` // anthropic | groq
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	BaseURL   string        `yaml:"base_url"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend"` // sheets | csv | postgres
	Worksheet string `yaml:"worksheet"`
	CSVPath   string `yaml:"csv_path"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // none | file | redis
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type SourcesConfig struct {
	Region      string            `yaml:"region"`
	Twitter     TwitterConfig     `yaml:"twitter"`
	GitHub      GitHubConfig      `yaml:"github"`
	HackerNews  HackerNewsConfig  `yaml:"hackernews"`
	ProductHunt ProductHuntConfig `yaml:"producthunt"`
}

type TwitterConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	Instances  []string      `yaml:"instances"`
	Queries    []string      `yaml:"queries"`
	MaxResults int           `yaml:"max_results"`
	Delay      time.Duration `yaml:"delay"`
	UseBrowser bool          `yaml:"use_browser"`
}

type GitHubConfig struct {
	Enabled     *bool         `yaml:"enabled"`
	Queries     []string      `yaml:"queries"`
	MaxResults  int           `yaml:"max_results"`
	QueryDelay  time.Duration `yaml:"query_delay"`
	DetailDelay time.Duration `yaml:"detail_delay"`
	BaseURL     string        `yaml:"base_url"`
}

type HackerNewsConfig struct {
	Enabled    *bool    `yaml:"enabled"`
	Queries    []string `yaml:"queries"`
	MaxResults int      `yaml:"max_results"`
	Days       int      `yaml:"days"`
	BaseURL    string   `yaml:"base_url"`
}

type ProductHuntConfig struct {
	Enabled *bool  `yaml:"enabled"`
	FeedURL string `yaml:"feed_url"`
	Limit   int    `yaml:"limit"`
}

type EnrichConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	FetchBlogPage *bool         `yaml:"fetch_blog_page"`
}

type ThesisConfig struct {
	Stage            string `yaml:"stage"`
	Focus            string `yaml:"focus"`
	FounderQualities string `yaml:"founder_qualities"`
	FundDescription  string `yaml:"fund_description"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	PushURL string `yaml:"push_url"`
	Job     string `yaml:"job"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// Load reads .env, then the YAML file at path, then environment overrides.
// An empty path falls back to $SOURCER_CONFIG and then DefaultPath.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("SOURCER_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.GroqAPIKey, "GROQ_API_KEY")
	setString(&c.GitHubToken, "GITHUB_TOKEN")
	setString(&c.GoogleCredentialsJSON, "GOOGLE_CREDENTIALS_JSON")
	setString(&c.GoogleSheetID, "GOOGLE_SHEET_ID")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Metrics.PushURL, "PUSHGATEWAY_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if chatID := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = "anthropic"
	}
	if c.AI.Model == "" {
		if c.AI.Provider == "groq" {
			c.AI.Model = "llama-3.3-70b-versatile"
		} else {
			c.AI.Model = "claude-sonnet-4-20250514"
		}
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 1024
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "sheets"
	}
	if c.Store.Worksheet == "" {
		c.Store.Worksheet = "Prospects"
	}
	if c.Store.CSVPath == "" {
		c.Store.CSVPath = "prospects.csv"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = ".cache"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "sourcer:"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * 24 * time.Hour
	}

	s := &c.Sources
	if s.Region == "" {
		s.Region = "Chicago, IL"
	}
	if len(s.Twitter.Instances) == 0 {
		s.Twitter.Instances = []string{"https://nitter.net", "https://nitter.privacydev.net", "https://nitter.poast.org"}
	}
	if len(s.Twitter.Queries) == 0 {
		s.Twitter.Queries = []string{"building in public chicago", "startup founder chicago", "just launched chicago", "YC chicago"}
	}
	if s.Twitter.MaxResults == 0 {
		s.Twitter.MaxResults = 20
	}
	if s.Twitter.Delay == 0 {
		s.Twitter.Delay = 2 * time.Second
	}

	if len(s.GitHub.Queries) == 0 {
		s.GitHub.Queries = []string{`location:Chicago followers:>10`, `location:Illinois followers:>20`, `location:"Chicago, IL" repos:>5`}
	}
	if s.GitHub.MaxResults == 0 {
		s.GitHub.MaxResults = 20
	}
	if s.GitHub.QueryDelay == 0 {
		s.GitHub.QueryDelay = 2 * time.Second
	}
	if s.GitHub.DetailDelay == 0 {
		s.GitHub.DetailDelay = time.Second
	}

	if len(s.HackerNews.Queries) == 0 {
		s.HackerNews.Queries = []string{"Show HN", "Launch HN", "Ask HN: Feedback"}
	}
	if s.HackerNews.MaxResults == 0 {
		s.HackerNews.MaxResults = 30
	}
	if s.HackerNews.Days == 0 {
		s.HackerNews.Days = 30
	}

	if s.ProductHunt.FeedURL == "" {
		s.ProductHunt.FeedURL = "https://www.producthunt.com/feed"
	}
	if s.ProductHunt.Limit == 0 {
		s.ProductHunt.Limit = 20
	}

	if c.Enrich.Timeout == 0 {
		c.Enrich.Timeout = 10 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "founder_sourcer"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
}

// Validate reports the first missing credential for the selected backends.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingCredential)
		}
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("%w: GROQ_API_KEY", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	switch c.Store.Backend {
	case "sheets":
		if c.GoogleCredentialsJSON == "" {
			return fmt.Errorf("%w: GOOGLE_CREDENTIALS_JSON", ErrMissingCredential)
		}
		if c.GoogleSheetID == "" {
			return fmt.Errorf("%w: GOOGLE_SHEET_ID", ErrMissingCredential)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingCredential)
		}
	case "csv":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR", ErrMissingCredential)
		}
	case "file", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// TelegramEnabled is true only when both token and chat id are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func (c *Config) APIKey() string {
	if c.AI.Provider == "groq" {
		return c.GroqAPIKey
	}
	return c.AnthropicAPIKey
}

// Enabled treats an unset flag as on.
func Enabled(flag *bool) bool {
	return flag == nil || *flag
}
