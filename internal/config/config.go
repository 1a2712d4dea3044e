package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm/logger"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        int
	DatabaseURL string
	CORSOrigin  string
	// AdminToken guards the admin API. Empty disables it.
	AdminToken    string
	DBLogLevel    logger.LogLevel
	VoteRateLimit float64
	VoteRateBurst int
}

const (
	defaultPort        = 8080
	defaultDatabaseURL = "sqlite://polls.db"
	defaultCORSOrigin  = "*"
	defaultVoteRate    = 1.0
	defaultVoteBurst   = 5
)

// Load parses command line flags and falls back to environment variables
// for anything not given on the command line.
func Load(args []string) (Config, error) {
	var cfg Config
	var logLevel string

	fs := flag.NewFlagSet("polls", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (sqlite://path or postgres://dsn)")
	fs.StringVar(&logLevel, "db-log", "", "Database log level (silent, error, warn, info)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		port, err := envInt("PORT", defaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = envString("DATABASE_URL", defaultDatabaseURL)
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "sqlite://") && !strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		return Config{}, errors.New("DATABASE_URL must start with 'postgres://' or 'sqlite://'")
	}

	cfg.CORSOrigin = envString("CORS_ORIGIN", defaultCORSOrigin)
	cfg.AdminToken = os.Getenv("X_ADMIN_TOKEN")

	if logLevel == "" {
		logLevel = envString("DB_LOG_LEVEL", "silent")
	}
	level, err := ParseLogLevel(logLevel)
	if err != nil {
		return Config{}, err
	}
	cfg.DBLogLevel = level

	if cfg.VoteRateLimit, err = envFloat("VOTE_RATE_LIMIT", defaultVoteRate); err != nil {
		return Config{}, err
	}
	if cfg.VoteRateBurst, err = envInt("VOTE_RATE_BURST", defaultVoteBurst); err != nil {
		return Config{}, err
	}
	if cfg.VoteRateLimit <= 0 || cfg.VoteRateBurst <= 0 {
		return Config{}, errors.New("VOTE_RATE_LIMIT and VOTE_RATE_BURST must be positive")
	}

	return cfg, nil
}

// ParseLogLevel maps a textual level onto gorm's logger levels.
func ParseLogLevel(s string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown database log level %q", s)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return f, nil
}
