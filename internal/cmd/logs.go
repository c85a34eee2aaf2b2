package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/beiklive/mytoolmodule/internal/config"
	"github.com/beiklive/mytoolmodule/internal/logging"
	"github.com/beiklive/mytoolmodule/internal/util"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View session logs",
	Long: `View and filter the log files written by the file sink.

By default, shows the last lines of the most recent session under the
configured log directory.

Examples:
  # List sessions, newest first
  mytool logs --list

  # Show all lines of a specific session
  mytool logs -s 20240501_10_20_30_123 -n 0

  # Only the first rotated file
  mytool logs --files '*_1.log'

  # Follow the newest session across rotations
  mytool logs -f

  # Warnings and errors of the last hour, exported as CSV
  mytool logs --level warning --since 1h --export csv -o errors.csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsDir     string
	logsList    bool
	logsSession string
	logsTail    int
	logsFollow  bool
	logsLevel   string
	logsSince   string
	logsGrep    string
	logsFiles   string
	logsExport  string
	logsOutput  string
	logsWidth   int
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsDir, "dir", "", "Log base directory (default: logging.dir from config)")
	logsCmd.Flags().BoolVarP(&logsList, "list", "l", false, "List sessions instead of showing lines")
	logsCmd.Flags().StringVarP(&logsSession, "session", "s", "", "Session directory name (default: most recent)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Show records at or above this level (error/warning/info/debug)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show records since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Show records whose message matches this regex")
	logsCmd.Flags().StringVar(&logsFiles, "files", "", "Glob selecting log files of the session (e.g., '*_1.log')")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Export format: json, text, csv or yaml")
	logsCmd.Flags().StringVarP(&logsOutput, "output", "o", "", "Export destination (default: stdout)")
	logsCmd.Flags().IntVar(&logsWidth, "width", -1, "Truncate lines to this width (default: terminal width, 0 disables)")
}

// Styles for the viewer
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	levelStyles = map[logging.Level]lipgloss.Style{
		logging.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		logging.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		logging.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		logging.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
)

// logsQuery holds the parsed record filters of a logs invocation.
type logsQuery struct {
	filter logging.RecordFilter
	grep   *regexp.Regexp
	match  func(name string) bool
}

func (q logsQuery) apply(records []logging.Record) []logging.Record {
	records = logging.FilterRecords(records, q.filter)
	if q.grep == nil {
		return records
	}
	var out []logging.Record
	for _, rec := range records {
		if q.grep.MatchString(rec.Message) {
			out = append(out, rec)
		}
	}
	return out
}

func parseLogsQuery(now time.Time) (logsQuery, error) {
	var q logsQuery

	if logsLevel != "" {
		if _, err := logging.ParseLevel(logsLevel); err != nil {
			return q, err
		}
		q.filter.Level = logsLevel
	}

	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return q, fmt.Errorf("invalid duration format: %w", err)
		}
		q.filter.Since = now.Add(-duration)
	}

	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return q, fmt.Errorf("invalid grep pattern: %w", err)
		}
		q.grep = re
	}

	if logsFiles != "" {
		g, err := glob.Compile(logsFiles)
		if err != nil {
			return q, fmt.Errorf("invalid files pattern: %w", err)
		}
		q.match = g.Match
	}
	return q, nil
}

func runLogs(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	baseDir := logsDir
	if baseDir == "" {
		baseDir = config.Get().Logging.Dir
	}

	sessions, err := logging.ListSessions(appFs, baseDir)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if logsList {
		printSessions(out, sessions)
		return nil
	}
	if len(sessions) == 0 && logsSession == "" {
		fmt.Fprintf(out, "No sessions found in %s\n", baseDir)
		return nil
	}

	sessionDir := ""
	if logsSession != "" {
		sessionDir = filepath.Join(baseDir, logsSession)
	} else {
		sessionDir = sessions[0].Path
	}

	query, err := parseLogsQuery(time.Now())
	if err != nil {
		return err
	}

	if logsFollow {
		return followSession(cmd.Context(), out, sessionDir, query, 200*time.Millisecond)
	}

	records, err := logging.ReadSession(appFs, sessionDir, query.match)
	if err != nil {
		return err
	}
	records = query.apply(records)
	if logsTail > 0 && len(records) > logsTail {
		records = records[len(records)-logsTail:]
	}

	if logsExport != "" {
		return exportRecords(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
		return nil
	}
	width := viewerWidth(out)
	for _, rec := range records {
		fmt.Fprintln(out, util.TruncateANSI(formatRecord(rec), width))
	}
	return nil
}

// viewerWidth resolves --width, defaulting to the terminal width when the
// output is a terminal and to no truncation otherwise.
func viewerWidth(out io.Writer) int {
	if logsWidth >= 0 {
		return logsWidth
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			return w
		}
	}
	return 0
}

func exportRecords(out io.Writer, records []logging.Record) error {
	if logsOutput == "" {
		return logging.ExportRecords(out, records, logsExport)
	}
	file, err := appFs.Create(logsOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := logging.ExportRecords(file, records, logsExport); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d records to %s\n", len(records), logsOutput)
	return nil
}

// formatRecord renders a record for the terminal
func formatRecord(rec logging.Record) string {
	var sb strings.Builder
	sb.WriteString(dimStyle.Render(rec.Timestamp.Format("15:04:05.000")))
	sb.WriteString(" ")
	sb.WriteString(levelStyles[rec.Level].Render(fmt.Sprintf("%-7s", rec.Level)))
	sb.WriteString(" ")
	sb.WriteString(rec.Message)
	return sb.String()
}

func printSessions(out io.Writer, sessions []logging.SessionInfo) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-24s %-19s %5s %10s", "SESSION", "STARTED", "FILES", "SIZE")))
	for _, s := range sessions {
		fmt.Fprintf(out, "%-24s %-19s %5d %10s\n",
			s.Name,
			s.Started.Format("2006-01-02 15:04:05"),
			s.Files,
			util.FormatBytes(s.Size),
		)
	}
}

// followSession prints records appended to a session until ctx is done. It
// starts at the end of the newest file and moves on to each file created by
// a rotation.
func followSession(ctx context.Context, out io.Writer, sessionDir string, q logsQuery, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	current, err := newestFile(sessionDir, q.match)
	if err != nil {
		return err
	}
	var offset int64
	if current != "" {
		if info, err := appFs.Stat(current); err == nil {
			offset = info.Size()
		}
	}

	fmt.Fprintf(out, "Following %s... (Ctrl+C to stop)\n\n", sessionDir)
	width := viewerWidth(out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if current != "" {
			offset, err = printFrom(out, current, offset, q, width)
			if err != nil {
				return err
			}
		}

		next, err := newestFile(sessionDir, q.match)
		if err != nil {
			return err
		}
		if next != current {
			if current != "" {
				// Drain what was written before the switch.
				if _, err := printFrom(out, current, offset, q, width); err != nil {
					return err
				}
			}
			current, offset = next, 0
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// newestFile returns the path of the last log file of a session.
func newestFile(sessionDir string, match func(string) bool) (string, error) {
	names, err := logging.SessionFiles(appFs, sessionDir)
	if err != nil {
		return "", err
	}
	for i := len(names) - 1; i >= 0; i-- {
		if match == nil || match(names[i]) {
			return filepath.Join(sessionDir, names[i]), nil
		}
	}
	return "", nil
}

// printFrom prints the complete lines of path after offset and returns the
// offset following the last complete line.
func printFrom(out io.Writer, path string, offset int64, q logsQuery, width int) (int64, error) {
	file, err := appFs.Open(path)
	if err != nil {
		return offset, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("failed to seek: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// A partial line is left for the next poll.
			if err == io.EOF {
				return offset, nil
			}
			return offset, fmt.Errorf("error reading log file: %w", err)
		}
		offset += int64(len(line))

		rec, ok := logging.ParseLine(strings.TrimRight(line, "\n"))
		if !ok {
			fmt.Fprint(out, line)
			continue
		}
		if len(q.apply([]logging.Record{rec})) == 0 {
			continue
		}
		fmt.Fprintln(out, util.TruncateANSI(formatRecord(rec), width))
	}
}
