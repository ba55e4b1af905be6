package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Browser kinds accepted by the tab pool.
const (
	BrowserPrimary   = "primary"
	BrowserSecondary = "secondary"
)

// Tab reset policies applied after a failed navigation.
const (
	ResetReuse = "reuse"
	ResetBlank = "blank"
)

// Config holds all configuration for a scraping run.
type Config struct {
	// Browser session settings
	BrowserKind   string
	MaxTabs       int
	Headless      bool
	ExtensionPath string
	BrowserPath   string
	CDPAddress    string
	CDPPort       int

	// Tab pool behavior
	AcquireTimeout    time.Duration
	NavigationTimeout time.Duration
	TabSettleDelay    time.Duration
	TabSettleAttempts int
	TabResetPolicy    string
	Concurrency       int

	// Output
	OutputDir     string
	DebugDir      string
	SaveDebugHTML bool
	BufferSize    int
	MaxFileSizeMB int

	// Logging
	LogLevel string
	LogFile  string

	NotifyURL string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	maxTabs := getEnvIntOrDefault("SAWARI_MAX_TABS", getEnvIntOrDefault("SELENIUM_MAX_TABS", 4))

	cfg := &Config{
		BrowserKind:       NormalizeBrowserKind(getEnvOrDefault("SAWARI_BROWSER", getEnvOrDefault("SELENIUM_BROWSER", BrowserPrimary))),
		MaxTabs:           maxTabs,
		Headless:          getEnvBoolOrDefault("SAWARI_HEADLESS", true),
		ExtensionPath:     getEnvOrDefault("SAWARI_EXTENSION_PATH", ""),
		BrowserPath:       getEnvOrDefault("SAWARI_BROWSER_PATH", ""),
		CDPAddress:        getEnvOrDefault("SAWARI_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("SAWARI_CDP_PORT", 0),
		AcquireTimeout:    getEnvDurationMSOrDefault("SAWARI_ACQUIRE_TIMEOUT_MS", 60*time.Second),
		NavigationTimeout: getEnvDurationMSOrDefault("SAWARI_NAV_TIMEOUT_MS", 45*time.Second),
		TabSettleDelay:    getEnvDurationMSOrDefault("SAWARI_TAB_SETTLE_MS", 200*time.Millisecond),
		TabSettleAttempts: getEnvIntOrDefault("SAWARI_TAB_SETTLE_ATTEMPTS", 10),
		TabResetPolicy:    strings.ToLower(getEnvOrDefault("SAWARI_TAB_RESET_POLICY", ResetReuse)),
		Concurrency:       getEnvIntOrDefault("SAWARI_CONCURRENCY", maxTabs),
		OutputDir:         getEnvOrDefault("SAWARI_OUTPUT_DIR", "Output"),
		DebugDir:          getEnvOrDefault("SAWARI_DEBUG_DIR", "debug_output"),
		SaveDebugHTML:     getEnvBoolOrDefault("SAWARI_SAVE_DEBUG_HTML", false),
		BufferSize:        getEnvIntOrDefault("SAWARI_BUFFER_SIZE", 1000),
		MaxFileSizeMB:     getEnvIntOrDefault("SAWARI_MAX_FILE_SIZE_MB", 100),
		LogLevel:          strings.ToLower(getEnvOrDefault("SAWARI_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("SAWARI_LOG_FILE", "logs/sawari.log"),
		NotifyURL:         getEnvOrDefault("SAWARI_NOTIFY_URL", ""),
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxTabs < 1 {
		return fmt.Errorf("max tabs must be >= 1, got %d", c.MaxTabs)
	}
	switch c.BrowserKind {
	case BrowserPrimary, BrowserSecondary:
	default:
		return fmt.Errorf("unknown browser kind %q", c.BrowserKind)
	}
	switch c.TabResetPolicy {
	case ResetReuse, ResetBlank:
	default:
		return fmt.Errorf("unknown tab reset policy %q", c.TabResetPolicy)
	}
	if c.Concurrency < 1 {
		c.Concurrency = c.MaxTabs
	}
	return nil
}

// NormalizeBrowserKind maps engine names onto the two supported kinds.
// Unknown values are returned lowercased so Validate can reject them.
func NormalizeBrowserKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "", BrowserPrimary, "chrome", "chromium":
		return BrowserPrimary
	case BrowserSecondary, "firefox":
		return BrowserSecondary
	}
	return kind
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationMSOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if ms, err := strconv.Atoi(val); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}
