// Package config loads excel-connector settings from a TOML file, a .env
// file and EXCEL_CONNECTOR_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/kavithaselva95/excel-connector/pkg/connector"
	"github.com/kavithaselva95/excel-connector/pkg/connector/catalog"
	"github.com/kavithaselva95/excel-connector/pkg/connector/output"
	"github.com/kavithaselva95/excel-connector/pkg/connector/profile"
	"github.com/kavithaselva95/excel-connector/pkg/connector/schema"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXCEL_CONNECTOR_"

// DefaultPath is the config file read when none is given.
const DefaultPath = "excel-connector.toml"

// Config is the full application configuration.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Catalog CatalogConfig `toml:"catalog"`
	Server  ServerConfig  `toml:"server"`
	SQL     SQLConfig     `toml:"sql"`
	Log     LogConfig     `toml:"log"`
}

// ConvertConfig configures record conversion.
type ConvertConfig struct {
	SampleSize int      `toml:"sample_size"`
	Workers    int      `toml:"workers"`
	Timeout    string   `toml:"timeout"`
	Format     string   `toml:"format"`
	Pretty     bool     `toml:"pretty"`
	Formulas   bool     `toml:"formulas"`
	Sheets     []string `toml:"sheets"`
}

// CatalogConfig configures directory synchronization.
type CatalogConfig struct {
	Directory      string `toml:"directory"`
	MaxProfileRows int    `toml:"max_profile_rows"`
	Output         string `toml:"output"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SQLConfig configures the SQL record sink. An empty DSN disables it.
type SQLConfig struct {
	Driver      string `toml:"driver"`
	DSN         string `toml:"dsn"`
	TablePrefix string `toml:"table_prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			SampleSize: schema.DefaultSampleSize,
			Workers:    1,
			Format:     string(output.FormatJSON),
		},
		Catalog: CatalogConfig{
			Directory:      ".",
			MaxProfileRows: profile.DefaultMaxRows,
			Output:         "output.json",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		SQL: SQLConfig{
			Driver: "sqlite3",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path over the defaults, then applies .env
// and environment overrides. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	if err := num("SAMPLE_SIZE", &c.Convert.SampleSize); err != nil {
		return err
	}
	if err := num("WORKERS", &c.Convert.Workers); err != nil {
		return err
	}
	if err := num("MAX_PROFILE_ROWS", &c.Catalog.MaxProfileRows); err != nil {
		return err
	}
	str("TIMEOUT", &c.Convert.Timeout)
	str("FORMAT", &c.Convert.Format)
	str("DIRECTORY", &c.Catalog.Directory)
	str("ADDR", &c.Server.Addr)
	str("SQL_DRIVER", &c.SQL.Driver)
	str("SQL_DSN", &c.SQL.DSN)
	str("LOG_LEVEL", &c.Log.Level)
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if c.Convert.SampleSize < 1 {
		return fmt.Errorf("sample_size must be positive, got %d", c.Convert.SampleSize)
	}
	if c.Convert.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Convert.Workers)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Convert.Format); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.SQL.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("sql driver must be sqlite3 or postgres, got %q", c.SQL.Driver)
	}
	return nil
}

// Timeout parses the conversion timeout. Empty means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Convert.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Convert.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Convert.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// ConvertOptions builds conversion options from the config.
func (c *Config) ConvertOptions(logger *slog.Logger) connector.Options {
	opts := connector.DefaultOptions()
	opts.SampleSize = c.Convert.SampleSize
	opts.Workers = c.Convert.Workers
	opts.Formulas = c.Convert.Formulas
	opts.Sheets = c.Convert.Sheets
	opts.Logger = logger
	if d, err := c.Timeout(); err == nil {
		opts.Timeout = d
	}
	return opts
}

// CatalogOptions builds synchronization options from the config.
func (c *Config) CatalogOptions(logger *slog.Logger) catalog.Options {
	opts := catalog.DefaultOptions()
	opts.SampleSize = c.Convert.SampleSize
	opts.MaxProfileRows = c.Catalog.MaxProfileRows
	opts.Logger = logger
	return opts
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() output.Format {
	f, err := output.ParseFormat(c.Convert.Format)
	if err != nil {
		return output.FormatJSON
	}
	return f
}
