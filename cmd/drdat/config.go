package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/drdat/internal/logger"
	"github.com/samcharles93/drdat/pkg/drdat"
)

// Config represents the drdat configuration file (~/.config/drdat/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Quantization defaults for manifest entries that leave them unset.
	DefaultBits   *int     `yaml:"default_bits"`
	DefaultScale  *float64 `yaml:"default_scale"`
	DefaultOffset *float64 `yaml:"default_offset"`

	StrictNaN *bool `yaml:"strict_nan"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "drdat", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config;
// a file that exists but does not parse is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the quantization parameters used when a variable leaves them unset.
func (c Config) Defaults() drdat.Params {
	p := drdat.DefaultParams()
	if c.DefaultBits != nil {
		p.BitsPerSample = *c.DefaultBits
	}
	if c.DefaultScale != nil {
		p.Scale = *c.DefaultScale
	}
	if c.DefaultOffset != nil {
		p.Offset = *c.DefaultOffset
	}
	return p
}

// applyQuantFlags overrides defaults with explicitly set --bits/--scale/--offset.
func applyQuantFlags(c *cli.Command, p drdat.Params) drdat.Params {
	if c.IsSet("bits") {
		p.BitsPerSample = int(c.Int("bits"))
	}
	if c.IsSet("scale") {
		p.Scale = c.Float("scale")
	}
	if c.IsSet("offset") {
		p.Offset = c.Float("offset")
	}
	return p
}

type configKey struct{}

func configFrom(ctx context.Context) Config {
	cfg, _ := ctx.Value(configKey{}).(Config)
	return cfg
}

// setup loads the config file and installs the logger for every command.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := configFile
	if path == "" {
		path = configPath()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}

	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	log, err := logger.Build(w, logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	ctx = logger.WithContext(ctx, log)
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return ctx, nil
}
