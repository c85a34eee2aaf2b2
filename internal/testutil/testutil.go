// Package testutil provides testing utilities for mytool tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// TimestampLayout is the timestamp layout of log lines.
const TimestampLayout = "2006-01-02 15:04:05.000"

// WriteFiles creates each path with its content on fs, creating parent
// directories as needed.
func WriteFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()

	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// FileLine renders a line the way the file sink writes it. tag is the
// one-letter level tag (E, W, I or D).
func FileLine(ts time.Time, tag, msg string) string {
	return fmt.Sprintf("[%s] [%s] %s\n", ts.Format(TimestampLayout), tag, msg)
}

// SetupSession creates a session directory named after start under baseDir
// with one log file per entry of files, keyed by file name. It returns the
// session directory.
func SetupSession(t *testing.T, fs afero.Fs, baseDir string, start time.Time, files map[string][]string) string {
	t.Helper()

	name := fmt.Sprintf("%s_%03d", start.Format("20060102_15_04_05"), start.Nanosecond()/int(time.Millisecond))
	dir := filepath.Join(baseDir, name)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create session directory: %v", err)
	}

	contents := make(map[string]string, len(files))
	for file, lines := range files {
		contents[filepath.Join(dir, file)] = strings.Join(lines, "")
	}
	WriteFiles(t, fs, contents)
	return dir
}

// ReadLines returns the lines of a file without their trailing newlines.
func ReadLines(t *testing.T, fs afero.Fs, path string) []string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return splitLines(string(data))
}

// ListFiles returns the names of the regular files in dir, sorted.
func ListFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// splitLines splits a string into lines, dropping a trailing empty line
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
