package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Every failure the batch can hit maps to one of four error types. All of
// them are fatal to the batch; callers distinguish them with errors.As.
//
// =============================================================================

// ConfigError reports malformed or out-of-range configuration.
type ConfigError struct {
	// Key is the configuration key at fault, e.g. "file_structure[2]".
	Key string

	// Message describes the problem.
	Message string

	// Err is an optional underlying cause.
	Err error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg += " in " + e.Key
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingFieldError reports a record that lacks a field the configuration
// requires (candidate details, path components, controlling fields or
// summary columns).
type MissingFieldError struct {
	// Field is the missing field name.
	Field string

	// Role says what the field was needed for, e.g. "file_structure".
	Role string

	// Row is the 1-based data row number, or 0 when not known.
	Row int
}

func (e *MissingFieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing field %q", e.Field)
	if e.Role != "" {
		fmt.Fprintf(&b, " required by %s", e.Role)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " (row %d)", e.Row)
	}
	return b.String()
}

// ImageReadError reports a logo image that cannot be read or sized.
type ImageReadError struct {
	Path string
	Err  error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("cannot read image %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error { return e.Err }

// WriteError reports an output document that cannot be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
