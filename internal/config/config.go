package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWS_CREDIBILITY_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	newsAPIKeyEnv     = "NEWSAPI_KEY"
	perplexityKeyEnv  = "PERPLEXITY_API_KEY"
	classifierURLEnv  = "CLASSIFIER_URL"
	classifierKeyEnv  = "CLASSIFIER_API_KEY"
	redisAddrEnv      = "REDIS_ADDR"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Provider names understood by the source registry.
const (
	ProviderNewsAPI    = "newsapi"
	ProviderGoogleNews = "googlenews"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	News          NewsConfig         `yaml:"news"`
	RSS           RSSConfig          `yaml:"rss"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Verifier      VerifierConfig     `yaml:"verifier"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Headlines     HeadlinesConfig    `yaml:"headlines"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes where analysis records are stored.
// An empty DSN disables persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig configures the headline and search cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// NewsConfig groups settings for the NewsAPI provider and provider order.
type NewsConfig struct {
	Providers       []string      `yaml:"providers"`
	Endpoint        string        `yaml:"endpoint"`
	APIKey          string        `yaml:"apiKey"`
	PageSize        int           `yaml:"pageSize"`
	Timeout         time.Duration `yaml:"timeout"`
	LookbackDays    int           `yaml:"lookbackDays"`
	RatePerSecond   float64       `yaml:"ratePerSecond"`
	RateBurst       int           `yaml:"rateBurst"`
	ExcludedDomains []string      `yaml:"excludedDomains"`
}

// RSSConfig configures the Google News RSS provider.
type RSSConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Language string        `yaml:"language"`
	Region   string        `yaml:"region"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ClassifierConfig describes the text classifier service.
type ClassifierConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// VerifierConfig defines how to contact the OpenAI-compatible verifier API.
type VerifierConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"apiKey"`
	Model        string        `yaml:"model"`
	ReportModel  string        `yaml:"reportModel"`
	Timeout      time.Duration `yaml:"timeout"`
	DomainFilter []string      `yaml:"domainFilter"`
}

// ScoringConfig overrides the trusted-source allowlist.
type ScoringConfig struct {
	TrustedSources []string `yaml:"trustedSources"`
	MaxArticles    int      `yaml:"maxArticles"`
}

// HeadlinesConfig defines when and what headlines are refreshed.
type HeadlinesConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Country        string         `yaml:"country"`
	Categories     []string       `yaml:"categories"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (h HeadlinesConfig) Location() *time.Location {
	if h.location != nil {
		return h.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration from path (or NEWS_CREDIBILITY_CONFIG when path
// is empty) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = DriverPostgres
		}
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	}

	if v := os.Getenv(perplexityKeyEnv); v != "" {
		c.Verifier.APIKey = v
	}

	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.URL = v
	}

	if v := os.Getenv(classifierKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Headlines.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Headlines.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}

	if override.Redis.Addr != "" {
		base.Redis.Addr = override.Redis.Addr
	}
	if override.Redis.Password != "" {
		base.Redis.Password = override.Redis.Password
	}
	if override.Redis.DB != 0 {
		base.Redis.DB = override.Redis.DB
	}
	if override.Redis.TTL > 0 {
		base.Redis.TTL = override.Redis.TTL
	}

	if len(override.News.Providers) > 0 {
		base.News.Providers = override.News.Providers
	}
	if override.News.Endpoint != "" {
		base.News.Endpoint = override.News.Endpoint
	}
	if override.News.APIKey != "" {
		base.News.APIKey = override.News.APIKey
	}
	if override.News.PageSize > 0 {
		base.News.PageSize = override.News.PageSize
	}
	if override.News.Timeout > 0 {
		base.News.Timeout = override.News.Timeout
	}
	if override.News.LookbackDays > 0 {
		base.News.LookbackDays = override.News.LookbackDays
	}
	if override.News.RatePerSecond > 0 {
		base.News.RatePerSecond = override.News.RatePerSecond
	}
	if override.News.RateBurst > 0 {
		base.News.RateBurst = override.News.RateBurst
	}
	if len(override.News.ExcludedDomains) > 0 {
		base.News.ExcludedDomains = override.News.ExcludedDomains
	}

	if override.RSS.Endpoint != "" {
		base.RSS.Endpoint = override.RSS.Endpoint
	}
	if override.RSS.Language != "" {
		base.RSS.Language = override.RSS.Language
	}
	if override.RSS.Region != "" {
		base.RSS.Region = override.RSS.Region
	}
	if override.RSS.Timeout > 0 {
		base.RSS.Timeout = override.RSS.Timeout
	}

	if override.Classifier.URL != "" {
		base.Classifier.URL = override.Classifier.URL
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}
	if override.Classifier.Timeout > 0 {
		base.Classifier.Timeout = override.Classifier.Timeout
	}

	if override.Verifier.Endpoint != "" {
		base.Verifier.Endpoint = override.Verifier.Endpoint
	}
	if override.Verifier.APIKey != "" {
		base.Verifier.APIKey = override.Verifier.APIKey
	}
	if override.Verifier.Model != "" {
		base.Verifier.Model = override.Verifier.Model
	}
	if override.Verifier.ReportModel != "" {
		base.Verifier.ReportModel = override.Verifier.ReportModel
	}
	if override.Verifier.Timeout > 0 {
		base.Verifier.Timeout = override.Verifier.Timeout
	}
	if len(override.Verifier.DomainFilter) > 0 {
		base.Verifier.DomainFilter = override.Verifier.DomainFilter
	}

	if len(override.Scoring.TrustedSources) > 0 {
		base.Scoring.TrustedSources = override.Scoring.TrustedSources
	}
	if override.Scoring.MaxArticles > 0 {
		base.Scoring.MaxArticles = override.Scoring.MaxArticles
	}

	if override.Headlines.CronExpression != "" {
		base.Headlines.CronExpression = override.Headlines.CronExpression
	}
	if override.Headlines.Timezone != "" {
		base.Headlines.Timezone = override.Headlines.Timezone
	}
	if override.Headlines.Country != "" {
		base.Headlines.Country = override.Headlines.Country
	}
	if len(override.Headlines.Categories) > 0 {
		base.Headlines.Categories = override.Headlines.Categories
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:news_credibility.db?_pragma=busy_timeout(5000)"},
		Redis:    RedisConfig{TTL: 30 * time.Minute},
		News: NewsConfig{
			Providers:       []string{ProviderNewsAPI, ProviderGoogleNews},
			Endpoint:        "https://newsapi.org/v2",
			PageSize:        100,
			Timeout:         15 * time.Second,
			LookbackDays:    30,
			RatePerSecond:   1,
			RateBurst:       2,
			ExcludedDomains: []string{"youtube.com", "facebook.com", "twitter.com"},
		},
		RSS: RSSConfig{
			Endpoint: "https://news.google.com/rss",
			Language: "en-US",
			Region:   "US",
			Timeout:  15 * time.Second,
		},
		Classifier: ClassifierConfig{Timeout: 15 * time.Second},
		Verifier: VerifierConfig{
			Endpoint:    "https://api.perplexity.ai/chat/completions",
			Model:       "sonar-pro",
			ReportModel: "sonar-deep-research",
			Timeout:     60 * time.Second,
		},
		Scoring: ScoringConfig{MaxArticles: 100},
		Headlines: HeadlinesConfig{
			CronExpression: "*/30 * * * *",
			Timezone:       defaultTimezone,
			Country:        "us",
			Categories:     []string{"general"},
			location:       tz,
		},
	}
}
