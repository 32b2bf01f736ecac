package gourdianringlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	defaultCapacity         = 20
	defaultMaxMessageLength = 64
	defaultLevel            = "DEBUG"
	defaultEnableFallback   = true
)

// Config defines the construction parameters of a Logger.
//
// Fields:
//   - Capacity: Number of records the ring holds before overwriting (default 20)
//   - MaxMessageLength: Message storage size, terminator included (default 64)
//   - DefaultLevel: Threshold applied to every subsystem (default "DEBUG")
//   - SubsystemLevels: Per-subsystem thresholds overriding DefaultLevel
//   - MaxRecordRate: Records admitted per second, 0 for unlimited
//   - SkipFilteredLines: Drop records failing the drain-time threshold instead of emitting "\r"
//   - EnableFallback: Report sink errors on stderr when no ErrorHandler is set
//   - ErrorHandler: Receives sink errors
//
// Example:
//
//	config := Config{
//	    Capacity:         32,
//	    MaxMessageLength: 96,
//	    DefaultLevel:     "INFO",
//	    SubsystemLevels:  map[string]string{"SPI": "WARNING"},
//	}
type Config struct {
	Capacity          int               `json:"capacity" yaml:"capacity"`
	MaxMessageLength  int               `json:"max_message_length" yaml:"max_message_length"`
	DefaultLevel      string            `json:"default_level" yaml:"default_level"`
	SubsystemLevels   map[string]string `json:"subsystem_levels,omitempty" yaml:"subsystem_levels,omitempty"`
	MaxRecordRate     int               `json:"max_record_rate" yaml:"max_record_rate"`
	SkipFilteredLines bool              `json:"skip_filtered_lines" yaml:"skip_filtered_lines"`
	EnableFallback    bool              `json:"enable_fallback" yaml:"enable_fallback"`
	ErrorHandler      func(error)       `json:"-" yaml:"-"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:         defaultCapacity,
		MaxMessageLength: defaultMaxMessageLength,
		DefaultLevel:     defaultLevel,
		EnableFallback:   defaultEnableFallback,
	}
}

// Validate checks the configuration for values New cannot work with.
// Zero values are accepted and replaced by defaults in New.
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", ErrInvalidConfig)
	}
	if c.MaxMessageLength < 0 {
		return fmt.Errorf("%w: max_message_length cannot be negative", ErrInvalidConfig)
	}
	if c.MaxMessageLength == 1 {
		return fmt.Errorf("%w: max_message_length must leave room for text", ErrInvalidConfig)
	}
	if c.MaxRecordRate < 0 {
		return fmt.Errorf("%w: max_record_rate cannot be negative", ErrInvalidConfig)
	}
	if c.DefaultLevel != "" {
		if _, err := ParseLevel(c.DefaultLevel); err != nil {
			return fmt.Errorf("%w: default_level: %w", ErrInvalidConfig, err)
		}
	}
	for name, lvl := range c.SubsystemLevels {
		if _, err := ParseSubsystem(name); err != nil {
			return fmt.Errorf("%w: subsystem_levels: %w", ErrInvalidConfig, err)
		}
		if _, err := ParseLevel(lvl); err != nil {
			return fmt.Errorf("%w: subsystem_levels[%s]: %w", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// thresholds builds the threshold table described by the configuration.
// The configuration must have been validated.
func (c *Config) thresholds() Thresholds {
	var t Thresholds
	if c.DefaultLevel != "" {
		lvl, _ := ParseLevel(c.DefaultLevel)
		for _, sub := range Subsystems() {
			_ = t.Set(sub, lvl)
		}
	}
	for name, lvlName := range c.SubsystemLevels {
		sub, _ := ParseSubsystem(name)
		lvl, _ := ParseLevel(lvlName)
		_ = t.Set(sub, lvl)
	}
	return t
}

// WithConfig builds a Logger from a JSON document layered over DefaultConfig.
//
// Example:
//
//	logger, err := WithConfig(`{"capacity": 32, "default_level": "info"}`, WithDisplay(WriterSink(os.Stdout)))
func WithConfig(jsonConfig string, opts ...Option) (*Logger, error) {
	config := DefaultConfig()
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return New(config, opts...)
}

// LoadConfig reads a configuration file layered over DefaultConfig. The
// format follows the extension: .yaml/.yml is YAML, anything else JSON.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return config, nil
}

// ApplyEnv overlays RINGLOG_* environment variables onto config.
// Unparseable values are ignored.
//
//   - RINGLOG_CAPACITY
//   - RINGLOG_MAX_MESSAGE_LENGTH
//   - RINGLOG_LEVEL
//   - RINGLOG_MAX_RATE
//   - RINGLOG_SKIP_FILTERED
func ApplyEnv(config *Config) {
	if v := os.Getenv("RINGLOG_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Capacity = n
		}
	}
	if v := os.Getenv("RINGLOG_MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxMessageLength = n
		}
	}
	if v := os.Getenv("RINGLOG_LEVEL"); v != "" {
		if _, err := ParseLevel(v); err == nil {
			config.DefaultLevel = v
		}
	}
	if v := os.Getenv("RINGLOG_MAX_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxRecordRate = n
		}
	}
	if v := os.Getenv("RINGLOG_SKIP_FILTERED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.SkipFilteredLines = b
		}
	}
}
