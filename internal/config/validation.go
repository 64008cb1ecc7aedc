package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs validation of the full configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	if c.Layouts.Latin == "" {
		errs = append(errs, ValidationError{Field: "layouts.latin", Message: "must not be empty"})
	}
	if c.Layouts.Cyrillic == "" {
		errs = append(errs, ValidationError{Field: "layouts.cyrillic", Message: "must not be empty"})
	}
	if c.Layouts.Latin != "" && c.Layouts.Latin == c.Layouts.Cyrillic {
		errs = append(errs, ValidationError{
			Field:   "layouts",
			Message: "latin and cyrillic must name different layouts",
		})
	}

	chords := []struct{ field, chord string }{
		{"hotkeys.fix_last", c.Hotkeys.FixLast},
		{"hotkeys.toggle", c.Hotkeys.Toggle},
		{"hotkeys.force_convert", c.Hotkeys.ForceConvert},
	}
	for _, hc := range chords {
		if _, err := ParseChord(hc.chord); err != nil {
			errs = append(errs, ValidationError{Field: hc.field, Message: err.Error()})
		}
	}

	if c.Timing.SettleDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "timing.settle_delay_ms", Message: "must not be negative"})
	}
	if c.Timing.SwitchPollIntervalMs <= 0 {
		errs = append(errs, ValidationError{Field: "timing.switch_poll_interval_ms", Message: "must be positive"})
	}
	if c.Timing.SwitchRetryLimit <= 0 {
		errs = append(errs, ValidationError{Field: "timing.switch_retry_limit", Message: "must be positive"})
	}
	if c.Timing.RelocationWindowRunes <= 0 {
		errs = append(errs, ValidationError{Field: "timing.relocation_window_runes", Message: "must be positive"})
	}

	if c.Dictionary.DatabasePath == "" {
		errs = append(errs, ValidationError{Field: "dictionary.database_path", Message: "must not be empty"})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}
	switch c.Logging.Output {
	case "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "required when output is \"file\"",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", c.Logging.Output),
		})
	}

	if c.IPC.Enabled && c.IPC.SocketPath == "" {
		errs = append(errs, ValidationError{Field: "ipc.socket_path", Message: "required when ipc is enabled"})
	}
	if c.IPC.TimeoutSec < 0 {
		errs = append(errs, ValidationError{Field: "ipc.timeout_sec", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
