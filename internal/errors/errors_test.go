package errors

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.severity.String())
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("log_dir", "/nope", ErrDirectoryCreate).WithCause(os.ErrPermission)

	assert.Equal(t, "config error [field=log_dir, value=/nope]: cannot create directory: permission denied", err.Error())
	assert.True(t, Is(err, ErrDirectoryCreate))
	assert.True(t, Is(err, os.ErrPermission))
	assert.True(t, IsConfiguration(err))
	assert.False(t, IsIO(err))
	assert.Equal(t, SeverityWarning, GetSeverity(err))
}

func TestSinkError(t *testing.T) {
	t.Run("with path and cause", func(t *testing.T) {
		err := NewSinkError("open", "/tmp/x.log", ErrFileOpen).WithCause(os.ErrNotExist)

		assert.Equal(t, "open /tmp/x.log: cannot open log file: file does not exist", err.Error())
		assert.True(t, Is(err, ErrFileOpen))
		assert.True(t, Is(err, os.ErrNotExist))
		assert.True(t, IsIO(err))
		assert.Equal(t, SeverityError, GetSeverity(err))
	})

	t.Run("without path", func(t *testing.T) {
		err := NewSinkError("write", "", ErrFileWrite).WithSeverity(SeverityWarning)
		assert.Equal(t, "write: cannot write log file", err.Error())
		assert.Equal(t, SeverityWarning, GetSeverity(err))
	})

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("rotate: %w", NewSinkError("stat", "a.log", ErrFileStat))
		assert.True(t, IsIO(wrapped))
		assert.True(t, Is(wrapped, ErrFileStat))
	})
}

func TestTranslationError(t *testing.T) {
	err := NewTranslationError("JP", "Welcome", ErrKeyNotFound)
	assert.Equal(t, "translation error [lang=JP, key=Welcome]: key not found", err.Error())
	assert.True(t, Is(err, ErrKeyNotFound))
	assert.False(t, Is(err, ErrLanguageFile))
}

func TestGetSeverity_Foreign(t *testing.T) {
	assert.Equal(t, SeverityInfo, GetSeverity(nil))
	assert.Equal(t, SeverityError, GetSeverity(New("boom")))
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil, "ignored"))
	require.NoError(t, Wrapf(nil, "ignored %d", 1))

	err := Wrapf(ErrFileWrite, "record %d", 7)
	assert.Equal(t, "record 7: cannot write log file", err.Error())
	assert.True(t, Is(err, ErrFileWrite))
}
