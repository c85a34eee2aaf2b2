package logging

import (
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// Logger fans formatted records out to the console and to a rotating file.
// It is safe for concurrent use: a single mutex serializes configuration
// changes and every sink write, so lines never interleave and the order of
// lines in a file is the order in which callers acquired the lock.
type Logger struct {
	mu sync.Mutex

	// Read without the lock on the hot path; written with mu held.
	level        atomic.Int32
	mode         atomic.Int32
	reportCaller atomic.Bool

	baseDir      string // guarded by mu
	maxFileBytes int64  // guarded by mu

	fs      afero.Fs
	now     func() time.Time
	console *consoleSink
	rotator *FileRotator
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	level        Level
	mode         OutputMode
	baseDir      string
	maxFileBytes int64
	console      io.Writer
	color        ColorMode
	fs           afero.Fs
	clock        func() time.Time
	reportCaller bool
}

// WithLevel sets the initial threshold (default LevelInfo).
func WithLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets the initial output mode (default OutputConsole).
func WithOutput(mode OutputMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithBaseDir sets the directory session directories are created in
// (default "./log"). Unlike SetBaseDirectory it does not touch the filesystem.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithMaxFileBytes sets the rotation threshold (default 10 MiB).
func WithMaxFileBytes(n int64) Option {
	return func(o *options) { o.maxFileBytes = n }
}

// WithConsole sets the console writer (default os.Stdout).
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithColor sets the console color mode (default ColorAlways).
func WithColor(mode ColorMode) Option {
	return func(o *options) { o.color = mode }
}

// WithFs sets the filesystem used by the file sink (default the OS).
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithClock sets the time source for timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithReportCaller prefixes every record with the calling function and line.
func WithReportCaller(enabled bool) Option {
	return func(o *options) { o.reportCaller = enabled }
}

// New creates a Logger. Without options it logs INFO and above to stdout.
func New(opts ...Option) *Logger {
	o := options{
		level:        LevelInfo,
		mode:         OutputConsole,
		baseDir:      DefaultBaseDir,
		maxFileBytes: DefaultMaxFileBytes,
		color:        ColorAlways,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}

	l := &Logger{
		baseDir:      o.baseDir,
		maxFileBytes: o.maxFileBytes,
		fs:           o.fs,
		now:          o.clock,
		console:      newConsoleSink(o.console, o.color),
	}
	l.level.Store(int32(o.level))
	l.mode.Store(int32(o.mode))
	l.reportCaller.Store(o.reportCaller)
	l.rotator = NewFileRotator(o.fs, o.clock, l.diagnose)
	return l
}

// Emit formats template with args (see Format) and writes the record to the
// active sinks if level passes the threshold.
func (l *Logger) Emit(level Level, template string, args ...any) {
	l.emit(level, 2, "", template, args)
}

// EmitContext is Emit with an explicit call-site context, rendered as a
// "[context] " prefix of the message.
func (l *Logger) EmitContext(level Level, context, template string, args ...any) {
	l.emit(level, 2, context, template, args)
}

// Error logs at LevelError.
func (l *Logger) Error(template string, args ...any) {
	l.emit(LevelError, 2, "", template, args)
}

// Warning logs at LevelWarning.
func (l *Logger) Warning(template string, args ...any) {
	l.emit(LevelWarning, 2, "", template, args)
}

// Info logs at LevelInfo.
func (l *Logger) Info(template string, args ...any) {
	l.emit(LevelInfo, 2, "", template, args)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(template string, args ...any) {
	l.emit(LevelDebug, 2, "", template, args)
}

// emit is the shared body of the Emit family. depth is the number of stack
// frames between emit and the user's call site.
func (l *Logger) emit(level Level, depth int, context, template string, args []any) {
	if !l.Enabled() || !level.Enabled(l.Level()) {
		return
	}
	if context == "" && l.reportCaller.Load() {
		context = callerContext(depth)
	}

	msg := Format(template, args...)
	if context != "" {
		msg = "[" + context + "] " + msg
	}
	l.dispatch(level, l.now(), msg)
}

// dispatch writes an already rendered message to the active sinks.
func (l *Logger) dispatch(level Level, ts time.Time, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mode := OutputMode(l.mode.Load())
	if mode.Console() {
		l.console.write(level, ts, msg)
	}
	if mode.File() {
		if err := l.rotator.Write(fileLine(level, ts, msg), l.baseDir, l.maxFileBytes); err != nil {
			l.diagnose(LevelError, err.Error())
		}
	}
}

// diagnose reports a problem or notice of the engine itself on the console,
// regardless of the output mode. The caller must hold mu.
func (l *Logger) diagnose(level Level, msg string) {
	if !level.Enabled(l.Level()) {
		return
	}
	l.console.write(level, l.now(), msg)
}

// callerContext returns "pkg.Func:line" for the frame skip levels above the
// function that calls it.
func callerContext(skip int) string {
	pc, _, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	name := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	return name + ":" + strconv.Itoa(line)
}

// Close flushes and closes the log file. The output mode is left unchanged,
// but file writes are dropped until SetOutputMode enables the file sink again.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotator.Close()
}

// SessionDir returns the session directory of the file sink, or "" if no
// file record has been written yet.
func (l *Logger) SessionDir() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotator.SessionDir()
}

// CurrentFile returns the path of the active log file.
func (l *Logger) CurrentFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotator.CurrentFile()
}

// Rotations returns the number of file rotations so far.
func (l *Logger) Rotations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotator.Rotations()
}

var defaultLogger atomic.Pointer[Logger]

// Default returns the process-wide Logger, creating it with default settings
// on first use.
func Default() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, New())
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide Logger. The previous one is returned
// so callers can close it.
func SetDefault(l *Logger) *Logger {
	return defaultLogger.Swap(l)
}

// Error logs at LevelError on the default Logger.
func Error(template string, args ...any) {
	Default().emit(LevelError, 2, "", template, args)
}

// Warning logs at LevelWarning on the default Logger.
func Warning(template string, args ...any) {
	Default().emit(LevelWarning, 2, "", template, args)
}

// Info logs at LevelInfo on the default Logger.
func Info(template string, args ...any) {
	Default().emit(LevelInfo, 2, "", template, args)
}

// Debug logs at LevelDebug on the default Logger.
func Debug(template string, args ...any) {
	Default().emit(LevelDebug, 2, "", template, args)
}
