package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "CONFIG_FILE"

// Config is assembled from three layers. A value set in the environment wins
// over the YAML file, which wins over Defaults.
type Config struct {
	// HTTP Server
	Port           string `json:"port,omitempty" env:"PORT"`
	MaxImportBytes int64  `json:"max_import_bytes,omitempty" env:"MAX_IMPORT_BYTES"`

	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`

	// Ledger bootstrap
	SeedFile string             `json:"seed_file,omitempty" env:"SEED_FILE"`
	Budgets  map[string]float64 `json:"budgets,omitempty"`

	// AMQP change feed, disabled when AMQPURL is empty
	AMQPURL      string `json:"amqp_url,omitempty" env:"AMQP_URL"`
	AMQPExchange string `json:"amqp_exchange,omitempty" env:"AMQP_EXCHANGE"`
	AMQPQueue    string `json:"amqp_queue,omitempty" env:"AMQP_QUEUE"`

	// Google Sheets mirror
	GoogleSpreadsheetID      string `json:"google_spreadsheet_id,omitempty" env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `json:"google_sheet_name,omitempty" env:"GOOGLE_SHEET_NAME"`
	GoogleServiceAccountFile string `json:"google_service_account_file,omitempty" env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `json:"google_service_account_json,omitempty" env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Summary cache
	CacheSize int      `json:"cache_size,omitempty" env:"CACHE_SIZE"`
	CacheTTL  Duration `json:"cache_ttl,omitempty" env:"CACHE_TTL"`
}

// Duration accepts "5m"-style strings both from the environment and from YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func Defaults() Config {
	return Config{
		Port:            "8081",
		MaxImportBytes:  1 << 20,
		LogLevel:        "info",
		AMQPExchange:    "fintrack",
		AMQPQueue:       "ledger_events",
		GoogleSheetName: "Ledger",
		CacheSize:       64,
		CacheTTL:        Duration(5 * time.Minute),
	}
}

// Load reads the environment and, when CONFIG_FILE is set, the YAML file it
// names, then fills the remaining gaps from Defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		fileCfg, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&cfg, *fileCfg); err != nil {
			return nil, fmt.Errorf("merge config file: %w", err)
		}
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	return &cfg, nil
}

// ReadFile decodes a YAML config file. Keys follow the json tags of Config.
func ReadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	return level, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := c.SlogLevel(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.MaxImportBytes < 1 {
		errors = append(errors, fmt.Sprintf("invalid max import size %d: must be positive", c.MaxImportBytes))
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file not readable: %s", c.SeedFile))
		}
	}

	for category, amount := range c.Budgets {
		if strings.TrimSpace(category) == "" {
			errors = append(errors, "budget category cannot be empty")
		}
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			errors = append(errors, fmt.Sprintf("invalid budget for '%s': must be a non-negative number", category))
		}
	}

	if c.AMQPEnabled() {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet is configured")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the sheets mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL.Std() < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL.Std()))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings the mirror worker cannot run without.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var missing []string
	if !c.AMQPEnabled() {
		missing = append(missing, "AMQP_URL")
	}
	if !c.SheetsEnabled() {
		missing = append(missing, "GOOGLE_SPREADSHEET_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("worker configuration incomplete: %s required", strings.Join(missing, ", "))
	}
	return nil
}
