package logging

import (
	"fmt"
	"strings"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// Level is the severity of a log record. Lower values are more severe; a
// record is emitted when its level is <= the configured threshold.
type Level int32

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

// String returns the upper-case level name used on the console.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Tag returns the single-letter level tag used in log files.
func (l Level) Tag() string {
	switch l {
	case LevelError:
		return "E"
	case LevelWarning:
		return "W"
	case LevelInfo:
		return "I"
	case LevelDebug:
		return "D"
	default:
		return "?"
	}
}

// Enabled reports whether a record at level l passes the given threshold.
func (l Level) Enabled(threshold Level) bool {
	return l <= threshold
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and accepts the file tags ("E", "W", "I", "D") and "warn" as an alias.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR", "E":
		return LevelError, nil
	case "WARNING", "WARN", "W":
		return LevelWarning, nil
	case "INFO", "I":
		return LevelInfo, nil
	case "DEBUG", "D":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", errors.ErrInvalidLevel, s)
	}
}

// MarshalText encodes the level as its upper-case name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes any name accepted by ParseLevel.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ValidLevels returns the level names in severity order.
func ValidLevels() []string {
	return []string{"ERROR", "WARNING", "INFO", "DEBUG"}
}

// OutputMode selects which sinks are active.
type OutputMode int32

const (
	OutputNone OutputMode = iota
	OutputConsole
	OutputFile
	OutputAll
)

// String returns the lower-case mode name used in configuration files.
func (m OutputMode) String() string {
	switch m {
	case OutputNone:
		return "none"
	case OutputConsole:
		return "console"
	case OutputFile:
		return "file"
	case OutputAll:
		return "all"
	default:
		return "unknown"
	}
}

// Console reports whether the console sink is active in this mode.
func (m OutputMode) Console() bool {
	return m == OutputConsole || m == OutputAll
}

// File reports whether the file sink is active in this mode.
func (m OutputMode) File() bool {
	return m == OutputFile || m == OutputAll
}

// ParseOutputMode converts a mode name to an OutputMode. "both" is accepted
// as an alias for "all".
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return OutputNone, nil
	case "console":
		return OutputConsole, nil
	case "file":
		return OutputFile, nil
	case "all", "both":
		return OutputAll, nil
	default:
		return OutputConsole, fmt.Errorf("%w: %q", errors.ErrInvalidOutput, s)
	}
}

// ValidOutputModes returns the accepted output mode names.
func ValidOutputModes() []string {
	return []string{"none", "console", "file", "all"}
}
