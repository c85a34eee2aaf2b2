package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// ANSI color codes for the console level tag
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
)

// timestampLayout is the layout of the timestamp at the start of every line.
const timestampLayout = "2006-01-02 15:04:05.000"

// ColorMode controls whether the console level tag is colored.
type ColorMode int

const (
	// ColorAlways always emits ANSI color codes.
	ColorAlways ColorMode = iota
	// ColorAuto emits color codes only when the console is a terminal.
	ColorAuto
	// ColorNever never emits color codes.
	ColorNever
)

// String returns the configuration name of the mode.
func (c ColorMode) String() string {
	switch c {
	case ColorAlways:
		return "always"
	case ColorAuto:
		return "auto"
	case ColorNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseColorMode converts a configuration value to a ColorMode.
// Unknown values select ColorAlways.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ColorAuto
	case "never", "off", "false":
		return ColorNever
	default:
		return ColorAlways
	}
}

// levelColor returns the ANSI color code for a log level
func levelColor(level Level) string {
	switch level {
	case LevelError:
		return colorRed
	case LevelWarning:
		return colorYellow
	case LevelInfo:
		return colorGreen
	case LevelDebug:
		return colorBlue
	default:
		return colorReset
	}
}

// consoleSink writes colored lines to a terminal-like writer.
type consoleSink struct {
	w     io.Writer
	color bool
}

func newConsoleSink(w io.Writer, mode ColorMode) *consoleSink {
	if w == nil {
		w = os.Stdout
	}
	color := mode == ColorAlways
	if mode == ColorAuto {
		if f, ok := w.(interface{ Fd() uintptr }); ok {
			color = term.IsTerminal(int(f.Fd()))
		}
	}
	return &consoleSink{w: w, color: color}
}

// write renders "[timestamp] [LEVEL] message" in a single Write call.
// Errors are dropped: a broken terminal must not break the caller.
func (c *consoleSink) write(level Level, ts time.Time, msg string) {
	var sb strings.Builder
	sb.Grow(len(msg) + 48)
	sb.WriteString("[")
	sb.WriteString(ts.Format(timestampLayout))
	sb.WriteString("] [")
	if c.color {
		sb.WriteString(levelColor(level))
		sb.WriteString(level.String())
		sb.WriteString(colorReset)
	} else {
		sb.WriteString(level.String())
	}
	sb.WriteString("] ")
	sb.WriteString(msg)
	sb.WriteString("\n")

	_, _ = io.WriteString(c.w, sb.String())
}

// fileLine renders the plain file variant of a record.
func fileLine(level Level, ts time.Time, msg string) []byte {
	var sb strings.Builder
	sb.Grow(len(msg) + 32)
	sb.WriteString("[")
	sb.WriteString(ts.Format(timestampLayout))
	sb.WriteString("] [")
	sb.WriteString(level.Tag())
	sb.WriteString("] ")
	sb.WriteString(msg)
	sb.WriteString("\n")
	return []byte(sb.String())
}
