package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/dcf"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string
	HTTPPort    string
	AdminAPIKey string

	GeminiAPIKey string
	GeminiModel  string

	DCF dcf.Params

	ShareLinkTTL        time.Duration
	ShareWorkerInterval time.Duration
	AssessmentTTL       time.Duration
	MultiplierCacheTTL  time.Duration
	ReportListLimit     int

	SheetsSpreadsheetID   string
	SheetsCredentialsJSON string
}

// LoadDotEnv reads a .env file into the environment when one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", "path", p, "error", err)
		}
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	defaults := dcf.DefaultParams()
	return Config{
		DatabaseURL:  envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:     envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:  envOrDefault("ADMIN_API_KEY", ""),
		GeminiAPIKey: envOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		DCF: dcf.Params{
			WACC:             envOrDefaultDecimal("DCF_WACC", defaults.WACC),
			TerminalGrowth:   envOrDefaultDecimal("DCF_TERMINAL_GROWTH", defaults.TerminalGrowth),
			TaxRate:          envOrDefaultDecimal("DCF_TAX_RATE", defaults.TaxRate),
			ReinvestmentRate: envOrDefaultDecimal("DCF_REINVESTMENT_RATE", defaults.ReinvestmentRate),
			ForwardMargin:    envOrDefaultDecimal("DCF_FORWARD_MARGIN", defaults.ForwardMargin),
		},
		ShareLinkTTL:          envOrDefaultDuration("SHARE_LINK_TTL", 14*24*time.Hour),
		ShareWorkerInterval:   envOrDefaultDuration("SHARE_WORKER_INTERVAL", 1*time.Hour),
		AssessmentTTL:         envOrDefaultDuration("ASSESSMENT_TTL", 24*time.Hour),
		MultiplierCacheTTL:    envOrDefaultDuration("MULTIPLIER_CACHE_TTL", 24*time.Hour),
		ReportListLimit:       envOrDefaultInt("REPORT_LIST_LIMIT", 30),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsJSON: envOrDefault("SHEETS_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
