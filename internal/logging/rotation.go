package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// DefaultMaxFileBytes is the size above which the active log file is rotated.
const DefaultMaxFileBytes int64 = 10 * 1024 * 1024

// DefaultBaseDir is the directory session directories are created in.
const DefaultBaseDir = "./log"

// rotationState is the lifecycle state of a FileRotator.
type rotationState int

const (
	stateUninitialized rotationState = iota
	stateDirectoryReady
	stateFileOpen
	stateClosed
)

func (s rotationState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateDirectoryReady:
		return "directory-ready"
	case stateFileOpen:
		return "file-open"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// notifyFunc receives diagnostics produced while managing files.
type notifyFunc func(level Level, msg string)

// FileRotator owns the log file of the file sink. It creates one session
// directory per run under the base directory, names files by timestamp and
// replaces the active file once it grows past the size limit.
//
// A FileRotator holds at most one open file at a time. It is not safe for
// concurrent use on its own; Logger calls it with its lock held.
type FileRotator struct {
	fs     afero.Fs
	now    func() time.Time
	notify notifyFunc

	state       rotationState
	sessionDir  string
	currentFile string
	handle      afero.File
	rotations   int
}

// NewFileRotator creates a FileRotator on the given filesystem. No directory
// or file is created until the first Write.
func NewFileRotator(fs afero.Fs, now func() time.Time, notify notifyFunc) *FileRotator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if now == nil {
		now = time.Now
	}
	if notify == nil {
		notify = func(Level, string) {}
	}
	return &FileRotator{fs: fs, now: now, notify: notify}
}

// Write appends line to the active file, creating the session directory and
// the file on first use and rotating first when the file on disk is larger
// than maxBytes. A maxBytes <= 0 disables rotation. A file deleted by
// someone else is replaced by a new one in the session directory.
//
// After Close, Write is a no-op until Resume is called.
func (r *FileRotator) Write(line []byte, baseDir string, maxBytes int64) error {
	if r.state == stateClosed {
		return nil
	}

	if r.state == stateUninitialized {
		if err := r.prepareSession(baseDir); err != nil {
			return err
		}
	}

	if r.state == stateDirectoryReady {
		if err := r.openNew(); err != nil {
			return err
		}
		r.notify(LevelInfo, "New logfile : "+r.currentFile)
	} else {
		due, err := r.needsRotation(maxBytes)
		if err != nil {
			return err
		}
		if due {
			if err := r.rotate(); err != nil {
				return err
			}
		}
	}

	if _, err := r.handle.Write(line); err != nil {
		return errors.NewSinkError("write", r.currentFile, errors.ErrFileWrite).WithCause(err)
	}
	return nil
}

// prepareSession creates the base directory and the session directory.
func (r *FileRotator) prepareSession(baseDir string) error {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := r.fs.MkdirAll(baseDir, 0755); err != nil {
		return errors.NewSinkError("mkdir", baseDir, errors.ErrDirectoryCreate).WithCause(err)
	}

	dir := filepath.Join(baseDir, timestampName(r.now()))
	exists, err := afero.DirExists(r.fs, dir)
	if err != nil {
		return errors.NewSinkError("stat", dir, errors.ErrDirectoryCreate).WithCause(err)
	}
	if exists {
		r.notify(LevelDebug, "Directory already exists: "+dir)
	} else {
		if err := r.fs.Mkdir(dir, 0755); err != nil && !os.IsExist(err) {
			return errors.NewSinkError("mkdir", dir, errors.ErrDirectoryCreate).WithCause(err)
		}
		r.notify(LevelDebug, "Directory created successfully: "+dir)
	}

	r.sessionDir = dir
	r.state = stateDirectoryReady
	return nil
}

// openNew opens a fresh timestamp-named file in the session directory. The
// caller must have closed any previous handle.
func (r *FileRotator) openNew() error {
	path, err := r.nextFilePath()
	if err != nil {
		return err
	}

	file, err := r.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewSinkError("open", path, errors.ErrFileOpen).WithCause(err)
	}

	r.handle = file
	r.currentFile = path
	r.state = stateFileOpen
	return nil
}

// nextFilePath returns "<timestamp>.log" in the session directory, adding a
// numeric suffix when a file of that name already exists (two rotations in
// the same millisecond).
func (r *FileRotator) nextFilePath() (string, error) {
	stamp := timestampName(r.now())
	path := filepath.Join(r.sessionDir, stamp+".log")
	for i := 1; ; i++ {
		exists, err := afero.Exists(r.fs, path)
		if err != nil {
			return "", errors.NewSinkError("stat", path, errors.ErrFileStat).WithCause(err)
		}
		if !exists {
			return path, nil
		}
		path = filepath.Join(r.sessionDir, fmt.Sprintf("%s_%d.log", stamp, i))
	}
}

// needsRotation stats the active file by path. A file that was removed from
// under the handle is replaced; any other stat failure skips the record.
func (r *FileRotator) needsRotation(maxBytes int64) (bool, error) {
	info, err := r.fs.Stat(r.currentFile)
	if os.IsNotExist(err) {
		r.notify(LevelWarning, "Logfile missing, reopening : "+r.currentFile)
		return true, nil
	}
	if err != nil {
		return false, errors.NewSinkError("stat", r.currentFile, errors.ErrFileStat).WithCause(err)
	}
	return maxBytes > 0 && info.Size() > maxBytes, nil
}

// rotate closes the active file and opens a new one. The old handle is
// closed before the new file is opened.
func (r *FileRotator) rotate() error {
	if err := r.closeHandle(); err != nil {
		r.notify(LevelWarning, err.Error())
	}
	r.state = stateDirectoryReady

	if err := r.openNew(); err != nil {
		return err
	}
	r.rotations++
	r.notify(LevelInfo, "Switch to new logfile : "+r.currentFile)
	return nil
}

// closeHandle flushes and closes the active handle, if any.
func (r *FileRotator) closeHandle() error {
	if r.handle == nil {
		return nil
	}
	handle := r.handle
	r.handle = nil

	if err := handle.Sync(); err != nil {
		_ = handle.Close()
		return errors.NewSinkError("close", r.currentFile, errors.ErrFileClose).WithCause(err)
	}
	if err := handle.Close(); err != nil {
		return errors.NewSinkError("close", r.currentFile, errors.ErrFileClose).WithCause(err)
	}
	return nil
}

// Close flushes and closes the active file. Subsequent writes are dropped
// until Resume is called.
func (r *FileRotator) Close() error {
	err := r.closeHandle()
	r.state = stateClosed
	return err
}

// Resume re-enables a closed rotator. The next write opens a new file in the
// existing session directory, or starts a session if none was created yet.
func (r *FileRotator) Resume() {
	if r.state != stateClosed {
		return
	}
	if r.sessionDir != "" {
		r.state = stateDirectoryReady
	} else {
		r.state = stateUninitialized
	}
}

// Reset closes the active file and forgets the session directory so that
// the next write starts a new session (used when the base directory changes).
func (r *FileRotator) Reset() error {
	err := r.closeHandle()
	closed := r.state == stateClosed
	r.sessionDir = ""
	r.currentFile = ""
	r.state = stateUninitialized
	if closed {
		r.state = stateClosed
	}
	return err
}

// SessionDir returns the session directory, or "" before the first write.
func (r *FileRotator) SessionDir() string {
	return r.sessionDir
}

// CurrentFile returns the path of the active file, or "" if none was opened.
func (r *FileRotator) CurrentFile() string {
	return r.currentFile
}

// Rotations returns the number of rotations performed.
func (r *FileRotator) Rotations() int {
	return r.rotations
}

// IsOpen reports whether a file handle is currently held.
func (r *FileRotator) IsOpen() bool {
	return r.handle != nil
}

// timestampName formats t as YYYYMMDD_HH_MM_SS_mmm.
func timestampName(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format("20060102_15_04_05"), t.Nanosecond()/int(time.Millisecond))
}
