package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dotabot/database"
	"dotabot/models"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendCSV      = "csv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // restricts slash command registration when set

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Ledger configuration
	LedgerBackend  string         `env:"LEDGER_BACKEND" envDefault:"postgres"`
	LedgerCSVPath  string         `env:"LEDGER_CSV_PATH"`
	RoleCSVPath    string         `env:"ROLE_CSV_PATH"`
	LedgerTimezone string         `env:"LEDGER_TIMEZONE" envDefault:"America/Los_Angeles"`
	Location       *time.Location `env:"-"`

	// Bot configuration
	DailyReward      int64         `env:"DAILY_REWARD" envDefault:"25"`
	TriviaStake      int64         `env:"TRIVIA_STAKE" envDefault:"5"`
	TriviaTimeout    time.Duration `env:"TRIVIA_TIMEOUT" envDefault:"60s"`
	EnableTrivia     bool          `env:"ENABLE_TRIVIA" envDefault:"true"`
	EnableStreaks    bool          `env:"ENABLE_STREAKS" envDefault:"true"`
	SessionCacheSize int           `env:"SESSION_CACHE_SIZE" envDefault:"1024"`
	LeaderboardSize  int           `env:"LEADERBOARD_SIZE" envDefault:"10"`

	// Queue roles and emoji
	DefaultRoleID  int64  `env:"DEFAULT_ROLE_ID"`
	ImmortalRoleID int64  `env:"IMMORTAL_ROLE_ID"`
	DeadlockRoleID int64  `env:"DEADLOCK_ROLE_ID"`
	ImmortalEmoji  string `env:"IMMORTAL_EMOJI"`

	// Content configuration
	OpenDotaBaseURL       string `env:"OPENDOTA_BASE_URL" envDefault:"https://api.opendota.com/api"`
	OpenDotaRatePerMinute int    `env:"OPENDOTA_RATE_PER_MINUTE" envDefault:"60"`
	HeroImageBaseURL      string `env:"HERO_IMAGE_BASE_URL" envDefault:"https://cdn.cloudflare.steamstatic.com"`
	ContentCacheDir       string `env:"CONTENT_CACHE_DIR"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"dotabot"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"` // console, otlp or none
	OTelOTLPEndpoint         string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MILLIS" envDefault:"60000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads an optional .env file and parses the environment
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForMaintenance parses the environment for the migrate and ledger
// subcommands, which need the database but not the Discord token
func LoadForMaintenance() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish fills defaults that depend on other values
func (c *Config) finish() error {
	cacheDir := filepath.Join(os.TempDir(), "dotabot-cache")
	if c.ContentCacheDir == "" {
		c.ContentCacheDir = cacheDir
	}
	if c.LedgerCSVPath == "" {
		c.LedgerCSVPath = filepath.Join(cacheDir, "currency.csv")
	}
	if c.RoleCSVPath == "" {
		c.RoleCSVPath = filepath.Join(filepath.Dir(c.LedgerCSVPath), "role_ids.csv")
	}
	if c.ImmortalEmoji == "" {
		c.ImmortalEmoji = models.DefaultImmortalEmoji
	}
	c.LedgerBackend = strings.ToLower(strings.TrimSpace(c.LedgerBackend))

	loc, err := time.LoadLocation(c.LedgerTimezone)
	if err != nil {
		return fmt.Errorf("unknown LEDGER_TIMEZONE %q: %w", c.LedgerTimezone, err)
	}
	c.Location = loc
	return nil
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	var errs []error

	switch c.LedgerBackend {
	case LedgerBackendPostgres, LedgerBackendCSV:
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be %q or %q, got %q", LedgerBackendPostgres, LedgerBackendCSV, c.LedgerBackend))
	}

	if c.Environment != "test" {
		if c.DiscordToken == "" {
			errs = append(errs, errors.New("DISCORD_TOKEN is required"))
		}
		if c.LedgerBackend == LedgerBackendPostgres && c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	}

	if c.DailyReward < 0 {
		errs = append(errs, errors.New("DAILY_REWARD must not be negative"))
	}
	if c.TriviaStake <= 0 {
		errs = append(errs, errors.New("TRIVIA_STAKE must be positive"))
	}
	if c.TriviaTimeout <= 0 {
		errs = append(errs, errors.New("TRIVIA_TIMEOUT must be positive"))
	}
	if c.SessionCacheSize <= 0 {
		errs = append(errs, errors.New("SESSION_CACHE_SIZE must be positive"))
	}
	if c.LeaderboardSize <= 0 {
		errs = append(errs, errors.New("LEADERBOARD_SIZE must be positive"))
	}

	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		errs = append(errs, fmt.Errorf("OTEL_EXPORTER_TYPE must be console, otlp or none, got %q", c.OTelExporterType))
	}

	return errors.Join(errs...)
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:          "test-token",
		LedgerBackend:         LedgerBackendCSV,
		LedgerCSVPath:         filepath.Join(os.TempDir(), "dotabot-test", "currency.csv"),
		RoleCSVPath:           filepath.Join(os.TempDir(), "dotabot-test", "role_ids.csv"),
		LedgerTimezone:        "UTC",
		Location:              time.UTC,
		DailyReward:           25,
		TriviaStake:           5,
		TriviaTimeout:         60 * time.Second,
		EnableTrivia:          true,
		EnableStreaks:         true,
		SessionCacheSize:      1024,
		LeaderboardSize:       10,
		ImmortalEmoji:         models.DefaultImmortalEmoji,
		OpenDotaBaseURL:       "https://api.opendota.com/api",
		OpenDotaRatePerMinute: 60,
		HeroImageBaseURL:      "https://cdn.cloudflare.steamstatic.com",
		OTelServiceName:       "dotabot",
		OTelExporterType:      "none",
		LogLevel:              "info",
		LogFormat:             "text",
		Environment:           "test",
	}
}
