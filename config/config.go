// Package config loads server settings from an optional .env file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	LogLevel     string
	LogFormat    string
	TxMaxRetries int
	CORSOrigins  []string
}

// Keys double as environment variable names once upper-cased.
const (
	KeyPort         = "port"
	KeyDBPath       = "db_path"
	KeyJWTSecret    = "jwt_secret"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyTxMaxRetries = "tx_max_retries"
	KeyCORSOrigins  = "cors_origins"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 3001)
	v.SetDefault(KeyDBPath, "./kanban.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTxMaxRetries, 4)
	v.SetDefault(KeyCORSOrigins, "*")
}

// Load reads envFile if it exists, then the environment, then any flags in
// flags whose names match a key with dashes for underscores.
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyPort, KeyDBPath, KeyJWTSecret, KeyLogLevel, KeyLogFormat, KeyTxMaxRetries, KeyCORSOrigins} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	cfg := &Config{
		Port:         v.GetInt(KeyPort),
		DBPath:       v.GetString(KeyDBPath),
		JWTSecret:    v.GetString(KeyJWTSecret),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		TxMaxRetries: v.GetInt(KeyTxMaxRetries),
		CORSOrigins:  splitList(v.GetString(KeyCORSOrigins)),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.TxMaxRetries < 0 {
		return fmt.Errorf("tx max retries must not be negative, got %d", c.TxMaxRetries)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// Logger builds the process logger described by the config.
func (c *Config) Logger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
