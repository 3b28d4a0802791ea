package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string
	LogLevel          string
	HTTPAddr          string
	DBType            string
	DBDSN             string
	SQLitePath        string
	DataDir           string
	UploadDir         string
	DefaultUserID     int64
	DefaultDailyGoal  int
	Timezone          string
	MilestoneInterval time.Duration
	PatternCatalog    string
	CORSOrigins       []string
	AppURL            string
	SMTP              SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the environment (and .env when present) once. It panics on an
// invalid configuration.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current environment
// without caching it.
func FromEnv() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")
	c := &Config{
		Env:              getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":5000"),
		DBType:           getEnv("STORAGE_BACKEND", "file"),
		DBDSN:            getEnv("POSTGRES_DSN", ""),
		SQLitePath:       getEnv("SQLITE_PATH", dataDir+"/leettrack.db"),
		DataDir:          dataDir,
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		Timezone:         getEnv("TIMEZONE", "Local"),
		PatternCatalog:   getEnv("PATTERN_CATALOG", ""),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		AppURL:           getEnv("APP_URL", "http://localhost:5000"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}

	var err error
	if c.DefaultUserID, err = strconv.ParseInt(getEnv("DEFAULT_USER_ID", "1"), 10, 64); err != nil {
		return nil, fmt.Errorf("DEFAULT_USER_ID: %w", err)
	}
	if c.DefaultDailyGoal, err = strconv.Atoi(getEnv("DEFAULT_DAILY_GOAL", "5")); err != nil {
		return nil, fmt.Errorf("DEFAULT_DAILY_GOAL: %w", err)
	}
	if c.SMTP.Port, err = strconv.Atoi(getEnv("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}
	if c.MilestoneInterval, err = time.ParseDuration(getEnv("MILESTONE_INTERVAL", "30s")); err != nil {
		return nil, fmt.Errorf("MILESTONE_INTERVAL: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.DataDir == "" {
			return errors.New("file storage requires DATA_DIR to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres, sqlite")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.DefaultUserID <= 0 {
		return errors.New("DEFAULT_USER_ID must be positive")
	}
	if c.DefaultDailyGoal < 0 {
		return errors.New("DEFAULT_DAILY_GOAL must not be negative")
	}
	if c.MilestoneInterval <= 0 {
		return errors.New("MILESTONE_INTERVAL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves Timezone. Calendar days for stats are computed in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
