package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "INCREVISE"

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file       string
	fileNeeded bool
	dotenv     string
	env        bool
}

// WithFile reads a config file. A missing file is skipped.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithRequiredFile reads a config file that must exist.
func WithRequiredFile(path string) Option {
	return func(o *loadOptions) {
		o.file = path
		o.fileNeeded = true
	}
}

// WithDotEnv loads a .env file into the environment before it is read.
// A missing file is skipped; variables already set win.
func WithDotEnv(path string) Option {
	return func(o *loadOptions) {
		o.dotenv = path
	}
}

// WithoutEnv ignores environment variables.
func WithoutEnv() Option {
	return func(o *loadOptions) {
		o.env = false
	}
}

// Load resolves the configuration and validates it.
func Load(opts ...Option) (Config, error) {
	o := loadOptions{env: true}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()

	if o.file != "" {
		if err := loadFile(&cfg, o.file, o.fileNeeded); err != nil {
			return Config{}, err
		}
	}
	if o.dotenv != "" {
		if err := LoadDotEnv(o.dotenv); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", o.dotenv, err)
		}
	}
	if o.env {
		if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from a .env file without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// DefaultFile returns the config file a library root may carry.
func DefaultFile(root string) string {
	return filepath.Join(root, ".increvise", "config.toml")
}

func loadFile(cfg *Config, path string, needed bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !needed {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return decode(cfg, path, data)
}

// decode overlays data onto cfg; keys absent from data keep their value.
func decode(cfg *Config, path string, data []byte) error {
	switch {
	case isYAML(path):
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			pe := &ParseError{Path: path, Message: err.Error(), Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, pe.Column = de.Position()
			}
			return pe
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return nil
}
