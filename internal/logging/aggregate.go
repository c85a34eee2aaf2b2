package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// Record is a log line read back from a session directory.
type Record struct {
	Timestamp time.Time `json:"time" yaml:"time"`
	Level     Level     `json:"level" yaml:"level"`
	Message   string    `json:"msg" yaml:"msg"`
	File      string    `json:"file" yaml:"file"`
}

// RecordFilter selects records. Zero fields do not filter.
type RecordFilter struct {
	// Level keeps records that would pass this threshold ("warning" keeps
	// ERROR and WARNING). Empty means all levels.
	Level string

	// Since and Until bound the record timestamp, inclusive.
	Since time.Time
	Until time.Time

	// Contains keeps records whose message contains this substring.
	Contains string
}

// SessionInfo describes one session directory under a base directory.
type SessionInfo struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Started time.Time `json:"started" yaml:"started"`
	Files   int       `json:"files" yaml:"files"`
	Size    int64     `json:"size" yaml:"size"`
}

// stampLayout is the Go layout of session directory and file names
// without the millisecond suffix.
const stampLayout = "20060102_15_04_05"

// parseTimestampName parses a YYYYMMDD_HH_MM_SS_mmm name, ignoring any
// "_N" collision suffix and ".log" extension.
func parseTimestampName(name string) (time.Time, bool) {
	name = strings.TrimSuffix(name, ".log")
	if len(name) < len(stampLayout)+4 || name[len(stampLayout)] != '_' {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(stampLayout, name[:len(stampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	ms, err := strconv.Atoi(name[len(stampLayout)+1 : len(stampLayout)+4])
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(time.Duration(ms) * time.Millisecond), true
}

// ListSessions returns the session directories under baseDir, newest first.
// Entries whose names are not session timestamps are skipped.
func ListSessions(fs afero.Fs, baseDir string) ([]SessionInfo, error) {
	entries, err := afero.ReadDir(fs, baseDir)
	if err != nil {
		return nil, errors.NewSinkError("list", baseDir, errors.ErrFileStat).WithCause(err)
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		started, ok := parseTimestampName(entry.Name())
		if !ok {
			continue
		}
		info := SessionInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(baseDir, entry.Name()),
			Started: started,
		}
		files, err := afero.ReadDir(fs, info.Path)
		if err != nil {
			return nil, errors.NewSinkError("list", info.Path, errors.ErrFileStat).WithCause(err)
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".log" {
				continue
			}
			info.Files++
			info.Size += f.Size()
		}
		sessions = append(sessions, info)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Name > sessions[j].Name
	})
	return sessions, nil
}

// SessionFiles returns the log file names in a session directory in the
// order they were written.
func SessionFiles(fs afero.Fs, sessionDir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, sessionDir)
	if err != nil {
		return nil, errors.NewSinkError("list", sessionDir, errors.ErrFileStat).WithCause(err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			names = append(names, entry.Name())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return fileLess(names[i], names[j])
	})
	return names, nil
}

// fileOrder splits "<stamp>[_N].log" into its timestamp and collision
// suffix ("<stamp>.log" is suffix 0).
func fileOrder(name string) (time.Time, int, bool) {
	ts, ok := parseTimestampName(name)
	if !ok {
		return time.Time{}, 0, false
	}
	rest := strings.TrimSuffix(name, ".log")[len(stampLayout)+4:]
	if rest == "" {
		return ts, 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rest, "_"))
	if err != nil || !strings.HasPrefix(rest, "_") {
		return time.Time{}, 0, false
	}
	return ts, n, true
}

// fileLess orders log files by timestamp, then by numeric suffix, so that
// "<stamp>_10.log" follows "<stamp>_9.log". Other names sort last by name.
func fileLess(a, b string) bool {
	ta, na, okA := fileOrder(a)
	tb, nb, okB := fileOrder(b)
	switch {
	case okA && okB:
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		if na != nb {
			return na < nb
		}
		return a < b
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// ReadSession parses every log file of a session directory. Files are read
// in creation order and records keep their on-disk order. match selects
// files by base name; nil reads all of them.
func ReadSession(fs afero.Fs, sessionDir string, match func(name string) bool) ([]Record, error) {
	names, err := SessionFiles(fs, sessionDir)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, name := range names {
		if match != nil && !match(name) {
			continue
		}
		path := filepath.Join(sessionDir, name)
		file, err := fs.Open(path)
		if err != nil {
			return nil, errors.NewSinkError("open", path, errors.ErrFileOpen).WithCause(err)
		}
		records, err = readRecords(file, path, records)
		_ = file.Close()
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// readRecords appends the records of one file to dst. A line that does not
// start with a record header continues the message of the previous record.
func readRecords(r io.Reader, path string, dst []Record) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	const maxLine = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	first := len(dst)
	for scanner.Scan() {
		line := scanner.Text()
		rec, ok := ParseLine(line)
		if !ok {
			if len(dst) > first {
				dst[len(dst)-1].Message += "\n" + line
			}
			continue
		}
		rec.File = filepath.Base(path)
		dst = append(dst, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewSinkError("read", path, errors.ErrFileOpen).WithCause(err)
	}
	return dst, nil
}

// ParseLine parses a file line of the form "[2006-01-02 15:04:05.000] [I] msg".
func ParseLine(line string) (Record, bool) {
	n := len(timestampLayout)
	if len(line) < n+6 || line[0] != '[' || line[n+1:n+3] != "] " || line[n+3] != '[' {
		return Record{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, line[1:n+1], time.Local)
	if err != nil {
		return Record{}, false
	}
	rest := line[n+4:]
	end := strings.Index(rest, "]")
	if end < 0 {
		return Record{}, false
	}
	level, err := ParseLevel(rest[:end])
	if err != nil {
		return Record{}, false
	}
	return Record{
		Timestamp: ts,
		Level:     level,
		Message:   strings.TrimPrefix(rest[end+1:], " "),
	}, true
}

// FilterRecords returns the records matching every criterion of filter.
func FilterRecords(records []Record, filter RecordFilter) []Record {
	threshold := LevelDebug
	if filter.Level != "" {
		if lvl, err := ParseLevel(filter.Level); err == nil {
			threshold = lvl
		}
	}

	var out []Record
	for _, rec := range records {
		if !rec.Level.Enabled(threshold) {
			continue
		}
		if !filter.Since.IsZero() && rec.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && rec.Timestamp.After(filter.Until) {
			continue
		}
		if filter.Contains != "" && !strings.Contains(rec.Message, filter.Contains) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// ExportFormats lists the formats accepted by ExportRecords.
func ExportFormats() []string {
	return []string{"json", "text", "csv", "yaml"}
}

// ExportRecords writes records to w in the given format.
func ExportRecords(w io.Writer, records []Record, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "text":
		return exportText(w, records)
	case "csv":
		return exportCSV(w, records)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(ExportFormats(), ", "))
	}
}

// exportText writes records back in the file line format.
func exportText(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.Write(fileLine(rec.Level, rec.Timestamp, rec.Message)); err != nil {
			return fmt.Errorf("failed to write text record: %w", err)
		}
	}
	return bw.Flush()
}

func exportCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "level", "message", "file"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(time.RFC3339Nano),
			rec.Level.String(),
			rec.Message,
			rec.File,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
