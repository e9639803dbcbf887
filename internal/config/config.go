package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"

	RawSourceTable = "table"
	RawSourceFile  = "file"
)

type Config struct {
	// Database
	DatabaseURL string
	DBDriver    string

	// HTTP
	Port                int
	CORSAllowOrigin     string
	WriteTimeoutSeconds int

	// Raw data preview
	RawDataSource string
	RawDataPath   string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: NormalizeDSN(envStr("DATABASE_URL", "")),
		DBDriver:    strings.ToLower(envStr("DB_DRIVER", DriverPgx)),

		Port:                envInt("PORT", 5000),
		CORSAllowOrigin:     envStr("CORS_ALLOW_ORIGIN", "*"),
		WriteTimeoutSeconds: envInt("WRITE_TIMEOUT_SECONDS", 10),

		RawDataSource: strings.ToLower(envStr("RAW_DATA_SOURCE", RawSourceTable)),
		RawDataPath:   envStr("RAW_DATA_PATH", ""),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
		LogFile:   envStr("LOG_FILE", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	switch c.DBDriver {
	case DriverPgx, DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER %q is not supported, expected pgx|postgres", c.DBDriver))
	}
	switch c.RawDataSource {
	case RawSourceTable:
	case RawSourceFile:
		if c.RawDataPath == "" {
			errs = append(errs, "RAW_DATA_PATH is required when RAW_DATA_SOURCE=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("RAW_DATA_SOURCE %q is not supported, expected table|file", c.RawDataSource))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print(log logrus.FieldLogger) {
	log.WithFields(logrus.Fields{
		"database_url":    MaskDSN(c.DatabaseURL),
		"db_driver":       c.DBDriver,
		"port":            c.Port,
		"cors_origin":     c.CORSAllowOrigin,
		"write_timeout_s": c.WriteTimeoutSeconds,
		"raw_data_source": c.RawDataSource,
		"raw_data_path":   c.RawDataPath,
	}).Info("configuration loaded")
}

// NormalizeDSN rewrites the postgres:// alias to the postgresql:// scheme.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}

// MaskDSN hides the password component of a URL-style connection string.
func MaskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
