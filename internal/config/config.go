package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	Library       string        `yaml:"library" json:"library"`
	IndexDir      string        `yaml:"indexDir" json:"indexDir"`
	MetadataDir   string        `yaml:"metadataDir" json:"metadataDir"`
	MaxResults    int           `yaml:"maxResults" json:"maxResults"`
	Workers       int           `yaml:"workers" json:"workers"`
	Chords        bool          `yaml:"chords" json:"chords"`
	WatchDebounce time.Duration `yaml:"watchDebounce" json:"watchDebounce"`
	LogLevel      string        `yaml:"logLevel" json:"logLevel"`
	LogFile       string        `yaml:"logFile" json:"logFile"`
}

func defaults() *Config {
	return &Config{
		Library:       ".",
		MaxResults:    50,
		WatchDebounce: 500 * time.Millisecond,
		LogLevel:      "INFO",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// LYRICINDEX_CONFIG and the environment, in that order. A .env file in the
// working directory is loaded first and never overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("LYRICINDEX_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Library = getEnv("LYRICINDEX_LIBRARY", cfg.Library)
	cfg.IndexDir = getEnv("LYRICINDEX_INDEX_DIR", cfg.IndexDir)
	cfg.MetadataDir = getEnv("LYRICINDEX_METADATA_DIR", cfg.MetadataDir)
	cfg.MaxResults = getEnvInt("LYRICINDEX_MAX_RESULTS", cfg.MaxResults)
	cfg.Workers = getEnvInt("LYRICINDEX_WORKERS", cfg.Workers)
	cfg.Chords = getEnvBool("LYRICINDEX_CHORDS", cfg.Chords)
	cfg.WatchDebounce = getEnvDuration("LYRICINDEX_WATCH_DEBOUNCE", cfg.WatchDebounce)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Library, validation.Required),
		validation.Field(&c.MaxResults, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.WatchDebounce, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.In("DEBUG", "INFO", "WARN", "WARNING", "ERROR", "FATAL").
			Error("must be one of DEBUG, INFO, WARN, ERROR, FATAL")),
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}
