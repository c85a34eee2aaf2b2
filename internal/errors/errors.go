// Package errors provides the error definitions shared by the logging engine,
// the translator and the CLI. It defines sentinel errors, typed errors carrying
// the path or key involved, and classification helpers.
//
// # Error Types
//
//   - ConfigError: a configuration change could not be applied (for example the
//     requested log directory could not be created). The previous value stays.
//   - SinkError: an I/O operation of a log sink failed (open, stat, write, close).
//     The affected sink skips the record; logging continues.
//   - TranslationError: a language file could not be loaded or a key is missing.
//
// # Usage
//
//	err := errors.NewSinkError("open", path, errors.ErrFileOpen).WithCause(osErr)
//	if errors.IsIO(err) { ... }
//	if errors.Is(err, errors.ErrFileOpen) { ... }
//
// None of these errors is fatal inside the logging engine; they are reported
// as console diagnostics and the engine keeps running.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityInfo is for notices that do not indicate a problem.
	SeverityInfo Severity = iota
	// SeverityWarning is for errors the engine recovers from on its own.
	SeverityWarning
	// SeverityError is for errors that lose data (a dropped record).
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Configuration sentinel errors
var (
	// ErrDirectoryCreate indicates that a log directory could not be created.
	ErrDirectoryCreate = New("cannot create directory")
	// ErrInvalidLevel indicates an unknown log level name.
	ErrInvalidLevel = New("invalid log level")
	// ErrInvalidOutput indicates an unknown output mode name.
	ErrInvalidOutput = New("invalid output mode")
)

// I/O sentinel errors
var (
	// ErrFileOpen indicates that a log file could not be opened.
	ErrFileOpen = New("cannot open log file")
	// ErrFileStat indicates that the size of a log file could not be read.
	ErrFileStat = New("cannot stat log file")
	// ErrFileWrite indicates that a record could not be written.
	ErrFileWrite = New("cannot write log file")
	// ErrFileClose indicates that a log file could not be flushed or closed.
	ErrFileClose = New("cannot close log file")
)

// Translation sentinel errors
var (
	// ErrLanguageFile indicates that a language file could not be read or parsed.
	ErrLanguageFile = New("cannot load language file")
	// ErrKeyNotFound indicates a key missing from the loaded language.
	ErrKeyNotFound = New("key not found")
	// ErrNoLanguage indicates a lookup before any language was loaded.
	ErrNoLanguage = New("no language loaded")
	// ErrUnsupportedLanguage indicates a language code with no translation.
	ErrUnsupportedLanguage = New("unsupported language")
)

// baseError provides common functionality for all error types.
type baseError struct {
	kind     error
	cause    error
	severity Severity
}

// Unwrap returns both the sentinel kind and the underlying cause so that
// errors.Is matches either.
func (e *baseError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) tail() string {
	switch {
	case e.kind != nil && e.cause != nil:
		return fmt.Sprintf("%v: %v", e.kind, e.cause)
	case e.kind != nil:
		return e.kind.Error()
	case e.cause != nil:
		return e.cause.Error()
	}
	return ""
}

// ConfigError reports a configuration change that could not be applied.
//
// Example:
//
//	err := errors.NewConfigError("log_dir", "/root/forbidden", errors.ErrDirectoryCreate)
//	fmt.Println(err) // "config error [field=log_dir, value=/root/forbidden]: cannot create directory"
type ConfigError struct {
	baseError
	Field string
	Value string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, value string, kind error) *ConfigError {
	return &ConfigError{
		baseError: baseError{kind: kind, severity: SeverityWarning},
		Field:     field,
		Value:     value,
	}
}

// WithCause attaches the underlying error.
func (e *ConfigError) WithCause(err error) *ConfigError {
	e.cause = err
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	if e.Value != "" {
		parts = append(parts, "value="+e.Value)
	}
	prefix := "config error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("config error [%s]", strings.Join(parts, ", "))
	}
	return prefix + ": " + e.tail()
}

// SinkError reports a failed I/O operation of a log sink.
type SinkError struct {
	baseError
	Op   string
	Path string
}

// NewSinkError creates a new SinkError. Op names the failed operation
// ("mkdir", "open", "stat", "write", "close").
func NewSinkError(op, path string, kind error) *SinkError {
	return &SinkError{
		baseError: baseError{kind: kind, severity: SeverityError},
		Op:        op,
		Path:      path,
	}
}

// WithCause attaches the underlying error.
func (e *SinkError) WithCause(err error) *SinkError {
	e.cause = err
	return e
}

// WithSeverity sets the error severity.
func (e *SinkError) WithSeverity(s Severity) *SinkError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SinkError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.tail())
	}
	return fmt.Sprintf("%s: %s", e.Op, e.tail())
}

// TranslationError reports a failed language load or lookup.
type TranslationError struct {
	baseError
	Language string
	Key      string
}

// NewTranslationError creates a new TranslationError.
func NewTranslationError(language, key string, kind error) *TranslationError {
	return &TranslationError{
		baseError: baseError{kind: kind, severity: SeverityError},
		Language:  language,
		Key:       key,
	}
}

// WithCause attaches the underlying error.
func (e *TranslationError) WithCause(err error) *TranslationError {
	e.cause = err
	return e
}

// Error returns the formatted error message.
func (e *TranslationError) Error() string {
	var parts []string
	if e.Language != "" {
		parts = append(parts, "lang="+e.Language)
	}
	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}
	prefix := "translation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("translation error [%s]", strings.Join(parts, ", "))
	}
	return prefix + ": " + e.tail()
}

// IsConfiguration returns true if err is, or wraps, a ConfigError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigError
	return err != nil && As(err, &cfgErr)
}

// IsIO returns true if err is, or wraps, a SinkError.
func IsIO(err error) bool {
	var sinkErr *SinkError
	return err != nil && As(err, &sinkErr)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that are not defined in this package.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}
	var cfgErr *ConfigError
	if As(err, &cfgErr) {
		return cfgErr.Severity()
	}
	var sinkErr *SinkError
	if As(err, &sinkErr) {
		return sinkErr.Severity()
	}
	var trErr *TranslationError
	if As(err, &trErr) {
		return trErr.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
