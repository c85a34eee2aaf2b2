package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beiklive/mytoolmodule/internal/config"
	"github.com/beiklive/mytoolmodule/internal/logging"
	"github.com/beiklive/mytoolmodule/internal/testutil"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default so
// values do not leak between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupTestEnvironment swaps in an in-memory filesystem and a private config
// directory, and resets global command state.
func setupTestEnvironment(t *testing.T) afero.Fs {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MYTOOL_LOGGING_COLOR", "never")

	fs := afero.NewMemMapFs()
	prevFs := appFs
	appFs = fs

	resetState := func() {
		viper.Reset()
		_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
	}
	resetState()

	t.Cleanup(func() {
		appFs = prevFs
		resetState()
		if prev := logging.SetDefault(logging.New()); prev != nil {
			_ = prev.Close()
		}
	})
	return fs
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var sessionStart = time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.Local)

// writeTestSession creates a session of two files with four records.
func writeTestSession(t *testing.T, fs afero.Fs) string {
	t.Helper()
	return testutil.SetupSession(t, fs, "/logs", sessionStart, map[string][]string{
		"20240501_10_20_30_123.log": {
			testutil.FileLine(sessionStart, "I", "service started"),
			testutil.FileLine(sessionStart.Add(time.Second), "D", "config loaded"),
		},
		"20240501_10_20_31_000.log": {
			testutil.FileLine(sessionStart.Add(2*time.Second), "W", "disk usage at 91%"),
			testutil.FileLine(sessionStart.Add(3*time.Second), "E", "disk write failed"),
		},
	})
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "mytool" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "mytool")
	}

	expectedCmds := []string{"demo", "stress", "logs", "tr", "jsonscan", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestDemoCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "demo")
	require.NoError(t, err)

	assert.Contains(t, output, "] [INFO] hello world\n")
	assert.Contains(t, output, "] [ERROR] this is error\n")
	assert.Contains(t, output, "] [WARNING] this is warning\n")
	assert.Contains(t, output, "] [ERROR] Error: 42 - 3.14\n")
	assert.NotContains(t, output, "this is debug 1")
	assert.Contains(t, output, "] [DEBUG] this is debug 2\n")
	assert.Contains(t, output, "] [DEBUG] Debug: Value is 42\n")
	assert.NotContains(t, output, "this log will not output")
}

func TestDemoCommandLogLevel(t *testing.T) {
	t.Run("debug flag", func(t *testing.T) {
		setupTestEnvironment(t)
		output, err := executeCommand(rootCmd, "--log-level", "DEBUG", "demo")
		require.NoError(t, err)
		assert.Contains(t, output, "this is debug 1")
	})

	t.Run("error flag", func(t *testing.T) {
		setupTestEnvironment(t)
		output, err := executeCommand(rootCmd, "--log-level", "error", "demo")
		require.NoError(t, err)
		assert.NotContains(t, output, "hello world")
		assert.Contains(t, output, "this is error")
		// Raised to DEBUG by the demo itself.
		assert.Contains(t, output, "this is debug 2")
	})

	t.Run("unknown level", func(t *testing.T) {
		setupTestEnvironment(t)
		output, err := executeCommand(rootCmd, "--log-level", "loud", "demo")
		require.NoError(t, err)
		assert.Contains(t, output, "[WARNING] Unknown log level loud, using INFO")
		assert.Contains(t, output, "hello world")
		assert.NotContains(t, output, "this is debug 1")
	})

	t.Run("env override", func(t *testing.T) {
		setupTestEnvironment(t)
		t.Setenv("MYTOOL_LOGGING_LEVEL", "debug")
		output, err := executeCommand(rootCmd, "demo")
		require.NoError(t, err)
		assert.Contains(t, output, "this is debug 1")
	})
}

func TestStressCommand(t *testing.T) {
	fs := setupTestEnvironment(t)
	t.Setenv("MYTOOL_LOGGING_DIR", "/logs")

	output, err := executeCommand(rootCmd, "stress", "-t", "4", "-n", "50", "--max-size", "2048")
	require.NoError(t, err)
	assert.Contains(t, output, "Records:   200 of 200")

	sessions, err := logging.ListSessions(fs, "/logs")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Greater(t, sessions[0].Files, 1, "expected rotation at 2 KiB")

	for _, name := range testutil.ListFiles(t, fs, sessions[0].Path) {
		for _, line := range testutil.ReadLines(t, fs, filepath.Join(sessions[0].Path, name)) {
			_, ok := logging.ParseLine(line)
			assert.True(t, ok, "malformed line %q in %s", line, name)
		}
	}
}

func TestStressCommandRejectsBadCounts(t *testing.T) {
	setupTestEnvironment(t)
	_, err := executeCommand(rootCmd, "stress", "-t", "0")
	assert.Error(t, err)
}

func TestLogsCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		excludes   []string
		wantErr    bool
		noSessions bool
	}{
		{
			name:     "latest session",
			args:     []string{"logs", "--dir", "/logs", "--width", "0"},
			contains: []string{"service started", "config loaded", "disk usage at 91%", "disk write failed", "WARNING"},
		},
		{
			name:     "tail",
			args:     []string{"logs", "--dir", "/logs", "-n", "1"},
			contains: []string{"disk write failed"},
			excludes: []string{"service started", "disk usage"},
		},
		{
			name:     "level",
			args:     []string{"logs", "--dir", "/logs", "--level", "warning"},
			contains: []string{"disk usage at 91%", "disk write failed"},
			excludes: []string{"service started", "config loaded"},
		},
		{
			name:     "grep",
			args:     []string{"logs", "--dir", "/logs", "--grep", "^disk (usage|write)"},
			contains: []string{"disk usage at 91%", "disk write failed"},
			excludes: []string{"service started"},
		},
		{
			name:     "files glob",
			args:     []string{"logs", "--dir", "/logs", "--files", "*_30_123.log"},
			contains: []string{"service started", "config loaded"},
			excludes: []string{"disk"},
		},
		{
			name:     "explicit session",
			args:     []string{"logs", "--dir", "/logs", "-s", "20240501_10_20_30_123"},
			contains: []string{"service started"},
		},
		{
			name:     "list",
			args:     []string{"logs", "--dir", "/logs", "--list"},
			contains: []string{"SESSION", "20240501_10_20_30_123", "2024-05-01 10:20:30"},
		},
		{
			name:     "since excludes old records",
			args:     []string{"logs", "--dir", "/logs", "--since", "1h"},
			contains: []string{"No matching log entries found."},
		},
		{
			name:    "invalid level",
			args:    []string{"logs", "--dir", "/logs", "--level", "loud"},
			wantErr: true,
		},
		{
			name:    "invalid since",
			args:    []string{"logs", "--dir", "/logs", "--since", "yesterday"},
			wantErr: true,
		},
		{
			name:    "invalid grep",
			args:    []string{"logs", "--dir", "/logs", "--grep", "("},
			wantErr: true,
		},
		{
			name:       "no sessions",
			args:       []string{"logs", "--dir", "/logs"},
			contains:   []string{"No sessions found in /logs"},
			noSessions: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupTestEnvironment(t)
			if tt.noSessions {
				require.NoError(t, fs.MkdirAll("/logs", 0755))
			} else {
				writeTestSession(t, fs)
			}

			output, err := executeCommand(rootCmd, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, output, s)
			}
		})
	}
}

func TestLogsExport(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		writeTestSession(t, fs)

		output, err := executeCommand(rootCmd, "logs", "--dir", "/logs", "--export", "json", "--level", "info")
		require.NoError(t, err)

		var records []logging.Record
		require.NoError(t, json.Unmarshal([]byte(output), &records))
		require.Len(t, records, 3)
		assert.Equal(t, "service started", records[0].Message)
		assert.Equal(t, logging.LevelError, records[2].Level)
	})

	t.Run("csv to file", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		writeTestSession(t, fs)

		output, err := executeCommand(rootCmd, "logs", "--dir", "/logs", "--export", "csv", "-o", "/out/records.csv")
		require.NoError(t, err)
		assert.Contains(t, output, "Exported 4 records to /out/records.csv")

		lines := testutil.ReadLines(t, fs, "/out/records.csv")
		require.Len(t, lines, 5)
		assert.Equal(t, "timestamp,level,message,file", lines[0])
	})

	t.Run("unknown format", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		writeTestSession(t, fs)

		_, err := executeCommand(rootCmd, "logs", "--dir", "/logs", "--export", "xml")
		assert.Error(t, err)
	})
}

func TestFollowSession(t *testing.T) {
	fs := setupTestEnvironment(t)
	dir := writeTestSession(t, fs)
	logsWidth = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- followSession(ctx, &out, dir, logsQuery{}, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Following")
	}, 2*time.Second, 5*time.Millisecond)

	current := filepath.Join(dir, "20240501_10_20_31_000.log")
	f, err := fs.OpenFile(current, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(testutil.FileLine(sessionStart.Add(4*time.Second), "I", "appended line"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "appended line")
	}, 2*time.Second, 5*time.Millisecond)

	// A rotation creates a newer file; the follower switches to it.
	testutil.WriteFiles(t, fs, map[string]string{
		filepath.Join(dir, "20240501_10_20_35_000.log"): testutil.FileLine(sessionStart.Add(5*time.Second), "E", "after rotation"),
	})
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "after rotation")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follow did not stop after cancel")
	}

	output := out.String()
	assert.NotContains(t, output, "service started", "existing lines are skipped")
	assert.NotContains(t, output, "disk write failed", "existing lines are skipped")
}

func TestTrCommand(t *testing.T) {
	files := map[string]string{
		"/res/EN.json": `{"Language": "English", "WelcomeMessage": "Welcome!"}`,
		"/res/CH.yaml": "Language: 中文\nWelcomeMessage: 欢迎！\n",
	}

	t.Run("all languages", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, files)

		output, err := executeCommand(rootCmd, "tr", "--dir", "/res", "--lang", "all", "Language", "WelcomeMessage")
		require.NoError(t, err)
		assert.Contains(t, output, "[EN]\n  Language: English\n  WelcomeMessage: Welcome!\n")
		assert.Contains(t, output, "[CH]\n  Language: 中文\n")
		// JP has no file.
		assert.Contains(t, output, "[ERROR]")
		assert.NotContains(t, output, "[JP]")
	})

	t.Run("default language from config", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, files)
		t.Setenv("MYTOOL_I18N_DIR", "/res")
		t.Setenv("MYTOOL_I18N_LANGUAGE", "CH")

		output, err := executeCommand(rootCmd, "tr")
		require.NoError(t, err)
		assert.Contains(t, output, "[CH]\n  Language: 中文\n  WelcomeMessage: 欢迎！\n")
	})

	t.Run("missing key", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, files)

		output, err := executeCommand(rootCmd, "tr", "--dir", "/res", "--lang", "en", "Goodbye")
		require.NoError(t, err)
		assert.Contains(t, output, "Goodbye: <missing>")
		assert.Contains(t, output, "[WARNING]")
	})

	t.Run("unsupported language", func(t *testing.T) {
		setupTestEnvironment(t)
		_, err := executeCommand(rootCmd, "tr", "--lang", "FR")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, files)
		_, err := executeCommand(rootCmd, "tr", "--dir", "/res", "--lang", "JP")
		assert.Error(t, err)
	})
}

func TestJSONScanCommand(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, map[string]string{
			"/doc.json": `null, true "abc" : -1.5e3 [1, [2]] {"k": "}"}`,
		})

		output, err := executeCommand(rootCmd, "jsonscan", "/doc.json")
		require.NoError(t, err)
		for _, want := range []string{
			"     0      4  null   null",
			"     6      4  bool   true",
			"    11      5  string \"abc\"",
			"    19      6  number -1.5e3",
			"    26      8  array  [1, [2]]",
			"    35     10  object {\"k\": \"}\"}",
		} {
			assert.Contains(t, output, want)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		setupTestEnvironment(t)
		rootCmd.SetIn(strings.NewReader(`[1, 2]`))

		output, err := executeCommand(rootCmd, "jsonscan")
		require.NoError(t, err)
		assert.Contains(t, output, "     0      6  array  [1, 2]")
	})

	t.Run("invalid", func(t *testing.T) {
		fs := setupTestEnvironment(t)
		testutil.WriteFiles(t, fs, map[string]string{"/bad.json": `true 012`})

		output, err := executeCommand(rootCmd, "jsonscan", "/bad.json")
		assert.Error(t, err)
		assert.Contains(t, output, "bool   true")
		assert.Contains(t, output, "Scan stopped after 1 values")
	})

	t.Run("missing file", func(t *testing.T) {
		setupTestEnvironment(t)
		_, err := executeCommand(rootCmd, "jsonscan", "/nope.json")
		assert.Error(t, err)
	})
}

func TestConfigCommands(t *testing.T) {
	t.Run("show defaults", func(t *testing.T) {
		setupTestEnvironment(t)
		output, err := executeCommand(rootCmd, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, output, "(none - using defaults)")
		assert.Contains(t, output, "logging:\n  level: info\n  output: console\n")
		assert.Contains(t, output, "language: EN")
	})

	t.Run("init then set", func(t *testing.T) {
		fs := setupTestEnvironment(t)

		output, err := executeCommand(rootCmd, "config", "init")
		require.NoError(t, err)
		assert.Contains(t, output, "Created config file at "+config.ConfigFile())

		exists, err := afero.Exists(fs, config.ConfigFile())
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = executeCommand(rootCmd, "config", "init")
		assert.Error(t, err, "second init must not overwrite")

		output, err = executeCommand(rootCmd, "config", "set", "logging.level", "DEBUG")
		require.NoError(t, err)
		assert.Contains(t, output, "Set logging.level = debug")

		data, err := afero.ReadFile(fs, config.ConfigFile())
		require.NoError(t, err)
		assert.Contains(t, string(data), "level: debug")
	})

	t.Run("path", func(t *testing.T) {
		setupTestEnvironment(t)
		output, err := executeCommand(rootCmd, "config", "path")
		require.NoError(t, err)
		assert.Contains(t, output, config.ConfigFile())
		assert.Contains(t, output, "MYTOOL_LOGGING_LEVEL")
	})
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    any
		wantErr bool
	}{
		{"logging.level", "WARN", "warning", false},
		{"logging.level", "loud", nil, true},
		{"logging.output", "ALL", "all", false},
		{"logging.output", "syslog", nil, true},
		{"logging.color", "Auto", "auto", false},
		{"logging.color", "rainbow", nil, true},
		{"logging.max_size_mb", "50", 50, false},
		{"logging.max_size_mb", "-1", nil, true},
		{"logging.max_size_bytes", "big", nil, true},
		{"logging.report_caller", "true", true, false},
		{"logging.report_caller", "maybe", nil, true},
		{"logging.dir", "/var/log/mytool", "/var/log/mytool", false},
		{"logging.dir", "", nil, true},
		{"i18n.language", "jp", "JP", false},
		{"i18n.language", "FR", nil, true},
		{"tui.theme", "dark", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewestFileUsesNumericSuffix(t *testing.T) {
	fs := setupTestEnvironment(t)
	files := map[string][]string{}
	for _, name := range []string{"", "_2", "_9", "_10"} {
		files["20240501_10_20_30_123"+name+".log"] = []string{testutil.FileLine(sessionStart, "I", "x"+name)}
	}
	dir := testutil.SetupSession(t, fs, "/logs", sessionStart, files)

	got, err := newestFile(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240501_10_20_30_123_10.log"), got)
}
