package logging

import (
	"github.com/spf13/afero"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// SetLevel replaces the level threshold.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level.Store(int32(level))
}

// Level returns the current threshold.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// SetOutputMode replaces the output mode. Enabling the file sink after Stop
// or Close opens a new file on the next write.
func (l *Logger) SetOutputMode(mode OutputMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode.Store(int32(mode))
	if mode.File() {
		l.rotator.Resume()
	}
}

// OutputMode returns the current output mode.
func (l *Logger) OutputMode() OutputMode {
	return OutputMode(l.mode.Load())
}

// Stop forces the output mode to OutputNone and closes the log file. The
// previous mode is not remembered; call SetOutputMode to log again.
func (l *Logger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode.Store(int32(OutputNone))
	if err := l.rotator.Close(); err != nil {
		l.diagnose(LevelError, err.Error())
	}
}

// SetBaseDirectory creates path if needed and makes it the base directory
// for session directories. If path cannot be created the previous base
// directory is kept and the error is returned after being reported on the
// console. A successful change closes the current file; the next file
// record starts a new session under path.
func (l *Logger) SetBaseDirectory(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if path == "" {
		err := errors.NewConfigError("logging.dir", path, errors.ErrDirectoryCreate)
		l.diagnose(LevelError, err.Error())
		return err
	}

	exists, err := afero.DirExists(l.fs, path)
	if err != nil {
		cerr := errors.NewConfigError("logging.dir", path, errors.ErrDirectoryCreate).WithCause(err)
		l.diagnose(LevelError, cerr.Error())
		return cerr
	}
	if exists {
		l.diagnose(LevelDebug, "Directory already exists: "+path)
	} else {
		if err := l.fs.MkdirAll(path, 0755); err != nil {
			cerr := errors.NewConfigError("logging.dir", path, errors.ErrDirectoryCreate).WithCause(err)
			l.diagnose(LevelError, cerr.Error())
			return cerr
		}
		l.diagnose(LevelDebug, "Directory created successfully: "+path)
	}

	if path != l.baseDir {
		l.baseDir = path
		if err := l.rotator.Reset(); err != nil {
			l.diagnose(LevelWarning, err.Error())
		}
	}
	l.diagnose(LevelInfo, "Use log path : "+path)
	return nil
}

// BaseDirectory returns the configured base directory.
func (l *Logger) BaseDirectory() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.baseDir
}

// SetMaxFileSize replaces the rotation threshold. It applies from the next
// size check; a file already larger than n is rotated on the next write.
// n <= 0 disables rotation.
func (l *Logger) SetMaxFileSize(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxFileBytes = n
}

// MaxFileSize returns the rotation threshold in bytes.
func (l *Logger) MaxFileSize() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxFileBytes
}

// SetReportCaller toggles the "[pkg.Func:line] " prefix on records.
func (l *Logger) SetReportCaller(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reportCaller.Store(enabled)
}

// Enabled reports whether any sink is active. Like the other accessors below
// it does not take the lock and may be momentarily stale.
func (l *Logger) Enabled() bool {
	return l.OutputMode() != OutputNone
}

// ConsoleActive reports whether the console sink is active.
func (l *Logger) ConsoleActive() bool {
	return l.OutputMode().Console()
}

// FileActive reports whether the file sink is active.
func (l *Logger) FileActive() bool {
	return l.OutputMode().File()
}

// LevelEnabled reports whether a record at level would currently be emitted.
func (l *Logger) LevelEnabled(level Level) bool {
	return l.Enabled() && level.Enabled(l.Level())
}
