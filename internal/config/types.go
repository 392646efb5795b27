// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// LogLevelDebug logs stage starts, action runs and resolution decisions.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs completed passes.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs skipped dependency checks and skipped plugin files.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidDuration is returned for non-positive durations.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LogLevel sets the stderr log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// PluginPaths are directories scanned for plugin files. Plugins named
		// by a settings file's activePluginsDetails are looked up there.
		PluginPaths []string `json:"plugin_paths" mapstructure:"plugin_paths"`
		// OutputSuffix is appended to the archive name when no output path
		// is given: ui.zip -> ui<suffix>.zip.
		OutputSuffix string `json:"output_suffix" mapstructure:"output_suffix"`
		// UpdateCheck configures update checks.
		UpdateCheck UpdateCheckConfig `json:"update_check" mapstructure:"update_check"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UpdateCheckConfig configures version info requests.
	UpdateCheckConfig struct {
		// Timeout bounds a single request.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		// CacheTTL is how long a fetched version document is reused.
		CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose prints full error chains and debug logs.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts l to a charmbracelet/log level.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.UpdateCheck.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("update_check.timeout %s: %w", c.UpdateCheck.Timeout, ErrInvalidDuration))
	}
	if c.UpdateCheck.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("update_check.cache_ttl %s: %w", c.UpdateCheck.CacheTTL, ErrInvalidDuration))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     LogLevelWarn,
		PluginPaths:  []string{},
		OutputSuffix: "-customized",
		UpdateCheck: UpdateCheckConfig{
			Timeout:  10 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
	}
}
