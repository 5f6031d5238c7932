package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config captures environment driven configuration values for the planner
// service.
type Config struct {
	HTTPPort                   int
	SQLiteDSN                  string
	SessionTTL                 time.Duration
	OverloadThreshold          decimal.Decimal
	UnderutilizationThreshold  decimal.Decimal
	WarningCacheTTL            time.Duration
	WarningCacheSize           int
	AlertReevaluationBatchDays int
}

// Load parses configuration values from the current process environment.
//
// Every value has a default; set variables are validated and all rejected
// names are reported in one error instead of failing on the first.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:                   8080,
		SQLiteDSN:                  "file:planner.db?_foreign_keys=on",
		SessionTTL:                 24 * time.Hour,
		OverloadThreshold:          decimal.NewFromInt(110),
		UnderutilizationThreshold:  decimal.NewFromInt(50),
		WarningCacheTTL:            30 * time.Second,
		WarningCacheSize:           128,
		AlertReevaluationBatchDays: 28,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANNER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PLANNER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PLANNER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if value := strings.TrimSpace(os.Getenv("PLANNER_OVERLOAD_THRESHOLD")); value != "" {
		threshold, err := decimal.NewFromString(value)
		if err != nil || !threshold.IsPositive() {
			invalid = append(invalid, "PLANNER_OVERLOAD_THRESHOLD")
		} else {
			cfg.OverloadThreshold = threshold
		}
	}

	if value := strings.TrimSpace(os.Getenv("PLANNER_UNDERUTILIZATION_THRESHOLD")); value != "" {
		threshold, err := decimal.NewFromString(value)
		if err != nil || threshold.IsNegative() {
			invalid = append(invalid, "PLANNER_UNDERUTILIZATION_THRESHOLD")
		} else {
			cfg.UnderutilizationThreshold = threshold
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PLANNER_WARNING_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PLANNER_WARNING_CACHE_TTL")
		} else {
			cfg.WarningCacheTTL = ttl
		}
	}

	if sizeValue := strings.TrimSpace(os.Getenv("PLANNER_WARNING_CACHE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "PLANNER_WARNING_CACHE_SIZE")
		} else {
			cfg.WarningCacheSize = size
		}
	}

	if daysValue := strings.TrimSpace(os.Getenv("PLANNER_ALERT_BATCH_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "PLANNER_ALERT_BATCH_DAYS")
		} else {
			cfg.AlertReevaluationBatchDays = days
		}
	}

	if cfg.UnderutilizationThreshold.GreaterThanOrEqual(cfg.OverloadThreshold) {
		invalid = append(invalid, "PLANNER_UNDERUTILIZATION_THRESHOLD")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
