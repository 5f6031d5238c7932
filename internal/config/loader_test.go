package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	plannerVars := []string{
		"PLANNER_HTTP_PORT",
		"PLANNER_SQLITE_DSN",
		"PLANNER_SESSION_TTL",
		"PLANNER_OVERLOAD_THRESHOLD",
		"PLANNER_UNDERUTILIZATION_THRESHOLD",
		"PLANNER_WARNING_CACHE_TTL",
		"PLANNER_WARNING_CACHE_SIZE",
		"PLANNER_ALERT_BATCH_DAYS",
	}
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range plannerVars {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:planner.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if !cfg.OverloadThreshold.Equal(decimal.NewFromInt(110)) {
			t.Fatalf("expected default overload threshold 110, got %s", cfg.OverloadThreshold)
		}
		if !cfg.UnderutilizationThreshold.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("expected default underutilization threshold 50, got %s", cfg.UnderutilizationThreshold)
		}
		if cfg.WarningCacheTTL != 30*time.Second {
			t.Fatalf("expected default warning cache TTL 30s, got %s", cfg.WarningCacheTTL)
		}
		if cfg.WarningCacheSize != 128 {
			t.Fatalf("expected default warning cache size 128, got %d", cfg.WarningCacheSize)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLANNER_HTTP_PORT", "9090")
		t.Setenv("PLANNER_SQLITE_DSN", "file:/tmp/planner.db")
		t.Setenv("PLANNER_SESSION_TTL", "12h")
		t.Setenv("PLANNER_OVERLOAD_THRESHOLD", "120")
		t.Setenv("PLANNER_UNDERUTILIZATION_THRESHOLD", "40.5")
		t.Setenv("PLANNER_WARNING_CACHE_TTL", "1m")
		t.Setenv("PLANNER_WARNING_CACHE_SIZE", "64")
		t.Setenv("PLANNER_ALERT_BATCH_DAYS", "14")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/planner.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if !cfg.OverloadThreshold.Equal(decimal.NewFromInt(120)) {
			t.Fatalf("expected overload threshold 120, got %s", cfg.OverloadThreshold)
		}
		if !cfg.UnderutilizationThreshold.Equal(decimal.RequireFromString("40.5")) {
			t.Fatalf("expected underutilization threshold 40.5, got %s", cfg.UnderutilizationThreshold)
		}
		if cfg.WarningCacheTTL != time.Minute {
			t.Fatalf("expected warning cache TTL 1m, got %s", cfg.WarningCacheTTL)
		}
		if cfg.WarningCacheSize != 64 {
			t.Fatalf("expected warning cache size 64, got %d", cfg.WarningCacheSize)
		}
		if cfg.AlertReevaluationBatchDays != 14 {
			t.Fatalf("expected alert batch days 14, got %d", cfg.AlertReevaluationBatchDays)
		}
	})

	t.Run("collects every invalid value into one error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLANNER_HTTP_PORT", "zero")
		t.Setenv("PLANNER_SESSION_TTL", "-1h")
		t.Setenv("PLANNER_WARNING_CACHE_SIZE", "0")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"PLANNER_HTTP_PORT", "PLANNER_SESSION_TTL", "PLANNER_WARNING_CACHE_SIZE"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to name %s, got %q", key, err.Error())
			}
		}
	})

	t.Run("rejects an inverted threshold pair", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLANNER_OVERLOAD_THRESHOLD", "60")
		t.Setenv("PLANNER_UNDERUTILIZATION_THRESHOLD", "90")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when the floor exceeds the ceiling")
		}
		if !strings.Contains(err.Error(), "PLANNER_UNDERUTILIZATION_THRESHOLD") {
			t.Fatalf("expected error to name PLANNER_UNDERUTILIZATION_THRESHOLD, got %q", err.Error())
		}
	})
}
