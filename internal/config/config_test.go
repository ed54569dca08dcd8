package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valuatum/myyntikunto/internal/dcf"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"DATABASE_URL", "HTTP_PORT", "GEMINI_MODEL", "DCF_WACC", "SHARE_LINK_TTL", "REPORT_LIST_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q, want default", cfg.GeminiModel)
	}
	if !cfg.DCF.WACC.Equal(dcf.DefaultParams().WACC) {
		t.Errorf("DCF.WACC = %s, want default", cfg.DCF.WACC)
	}
	if cfg.ShareLinkTTL != 14*24*time.Hour {
		t.Errorf("ShareLinkTTL = %v, want 336h", cfg.ShareLinkTTL)
	}
	if cfg.ReportListLimit != 30 {
		t.Errorf("ReportListLimit = %d, want 30", cfg.ReportListLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DCF_WACC", "0.15")
	t.Setenv("ASSESSMENT_TTL", "30m")
	t.Setenv("REPORT_LIST_LIMIT", "100")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.DCF.WACC.String() != "0.15" {
		t.Errorf("DCF.WACC = %s, want 0.15", cfg.DCF.WACC)
	}
	if cfg.AssessmentTTL != 30*time.Minute {
		t.Errorf("AssessmentTTL = %v, want 30m", cfg.AssessmentTTL)
	}
	if cfg.ReportListLimit != 100 {
		t.Errorf("ReportListLimit = %d, want 100", cfg.ReportListLimit)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("REPORT_LIST_LIMIT", "not-a-number")
	t.Setenv("SHARE_WORKER_INTERVAL", "invalid-duration")
	t.Setenv("DCF_TAX_RATE", "kaksikymmentä")

	cfg := Load()

	if cfg.ReportListLimit != 30 {
		t.Errorf("ReportListLimit = %d, want default 30 on invalid input", cfg.ReportListLimit)
	}
	if cfg.ShareWorkerInterval != time.Hour {
		t.Errorf("ShareWorkerInterval = %v, want default 1h on invalid input", cfg.ShareWorkerInterval)
	}
	if !cfg.DCF.TaxRate.Equal(dcf.DefaultParams().TaxRate) {
		t.Errorf("DCF.TaxRate = %s, want default on invalid input", cfg.DCF.TaxRate)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GEMINI_MODEL=gemini-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_MODEL", "")
	os.Unsetenv("GEMINI_MODEL")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	if got := Load().GeminiModel; got != "gemini-test" {
		t.Errorf("GeminiModel = %q, want value from .env", got)
	}
}
