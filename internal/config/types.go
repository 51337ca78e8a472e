// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MaxVerbosity is the highest accepted verbosity.
	MaxVerbosity = 3

	// DefaultLogDir is where transcripts go when log_dir is unset.
	DefaultLogDir = "logs"

	// DefaultStyle is the glamour style used when ui.style is unset.
	DefaultStyle = "auto"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidVerbosity is returned for a verbosity outside 0..MaxVerbosity.
	ErrInvalidVerbosity = errors.New("invalid verbosity")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidVerbosityError is returned for an out-of-range verbosity.
	InvalidVerbosityError struct {
		Value int
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects the field-level errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the user configuration.
	Config struct {
		// Verbosity is the default diagnostic tier; -v flags raise it.
		Verbosity int `json:"verbosity" mapstructure:"verbosity"`
		// LogDir is where transcripts are saved, relative to the project.
		LogDir string `json:"log_dir" mapstructure:"log_dir"`
		// SaveLog keeps a transcript after every run.
		SaveLog bool `json:"save_log" mapstructure:"save_log"`
		// Python overrides the interpreter command.
		Python string `json:"python" mapstructure:"python"`
		// CacheDir overrides the download cache location.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
		// NoInput makes prompts fail instead of waiting.
		NoInput bool `json:"no_input" mapstructure:"no_input"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the file the configuration was read from, if any.
		Source string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Style       string      `json:"style" mapstructure:"style"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogDir: DefaultLogDir,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Style:       DefaultStyle,
		},
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidVerbosityError) Error() string {
	return fmt.Sprintf("invalid verbosity %d (valid: 0 to %d)", e.Value, MaxVerbosity)
}

func (e *InvalidVerbosityError) Unwrap() error { return ErrInvalidVerbosity }

// Error lists every field error.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Validate checks the constraints the schema cannot see once environment
// overrides have been applied.
func (c *Config) Validate() error {
	var errs []error
	if c.Verbosity < 0 || c.Verbosity > MaxVerbosity {
		errs = append(errs, &InvalidVerbosityError{Value: c.Verbosity})
	}
	if ok, fieldErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
