// Package config loads the server configuration file used by `formset serve`.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/pkg/model"
)

const (
	DefaultAddr            = ":8080"
	DefaultBasePath        = "/api"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultMaxBodyBytes    = 1 << 20
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the server configuration.
type Config struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	AssetsPath      string        `yaml:"assets_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	Definitions     []string      `yaml:"definitions"`

	// dir resolves relative definition paths; empty means the working directory.
	dir string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		BasePath:        DefaultBasePath,
		AssetsPath:      "/assets",
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
		MaxBodyBytes:    DefaultMaxBodyBytes,
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Decode reads a YAML document over the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr is required", ErrInvalid)
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("%w: base_path %q must start with /", ErrInvalid, c.BasePath)
	}
	if c.AssetsPath != "" && !strings.HasPrefix(c.AssetsPath, "/") {
		return fmt.Errorf("%w: assets_path %q must start with /", ErrInvalid, c.AssetsPath)
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
		}
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a zap level.
func (c Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	return level, nil
}

// DefinitionPaths returns definition files resolved against the directory of
// the loaded config file.
func (c Config) DefinitionPaths() []string {
	paths := make([]string, 0, len(c.Definitions))
	for _, path := range c.Definitions {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		paths = append(paths, path)
	}
	return paths
}

// AddDefinitions appends definition paths given on the command line. They are
// kept relative to the working directory.
func (c *Config) AddDefinitions(paths ...string) {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		c.Definitions = append(c.Definitions, path)
	}
}

// LoadForms decodes every configured definition file. Form ids must be unique
// across files.
func (c Config) LoadForms() ([]model.Form, error) {
	var forms []model.Form
	seen := make(map[string]string)
	for _, path := range c.DefinitionPaths() {
		loaded, err := model.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, form := range loaded {
			if prev, ok := seen[form.ID]; ok {
				return nil, fmt.Errorf("%w: form %q defined in %s and %s", ErrInvalid, form.ID, prev, path)
			}
			seen[form.ID] = path
			forms = append(forms, form)
		}
	}
	return forms, nil
}
