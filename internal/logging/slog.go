package logging

import (
	"context"
	"log/slog"
	"strings"
)

// slogHandler is a slog.Handler that writes slog records through a Logger,
// so code written against log/slog ends up in the same console and file
// sinks. Attributes are appended to the message as key=value pairs.
type slogHandler struct {
	logger *Logger
	attrs  []slog.Attr
	group  string
}

// NewSlogHandler returns a slog.Handler backed by l.
func NewSlogHandler(l *Logger) slog.Handler {
	return &slogHandler{logger: l}
}

// NewSlogLogger is shorthand for slog.New(NewSlogHandler(l)).
func NewSlogLogger(l *Logger) *slog.Logger {
	return slog.New(NewSlogHandler(l))
}

// fromSlogLevel maps slog levels onto the four engine levels.
func fromSlogLevel(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarning
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.LevelEnabled(fromSlogLevel(level))
}

// Handle renders the record without placeholder substitution; slog messages
// are already final.
func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	level := fromSlogLevel(r.Level)
	if !h.logger.LevelEnabled(level) {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = h.logger.now()
	}
	h.logger.dispatch(level, ts, sb.String())
	return nil
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, key, ga)
		}
		return
	}
	sb.WriteString(" ")
	sb.WriteString(key)
	sb.WriteString("=")
	sb.WriteString(a.Value.String())
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}
