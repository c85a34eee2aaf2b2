// Package logging is a leveled logger that writes formatted lines to the
// console and to a size-rotated log file.
//
// # Levels and output
//
// Records have one of four levels, from most to least severe: [LevelError],
// [LevelWarning], [LevelInfo] and [LevelDebug]. A record is written when its
// level is at or above the configured threshold in severity; the default
// threshold is INFO. The [OutputMode] selects the sinks: none, console, file,
// or all of them.
//
// # Basic Usage
//
//	logger := logging.New(
//	    logging.WithLevel(logging.LevelDebug),
//	    logging.WithOutput(logging.OutputAll),
//	    logging.WithBaseDir("./log"),
//	)
//	defer logger.Close()
//
//	logger.Info("listening on {}", addr)
//	logger.Error("request {} failed: {}", id, err)
//
// Templates use positional "{}" placeholders (see [Format]). Arguments with
// no placeholder are dropped and placeholders with no argument are kept.
//
// The package-level functions [Info], [Warning], [Error] and [Debug] log
// through [Default], which may be replaced with [SetDefault].
//
// # Line format
//
// Console lines carry the level name colored by severity:
//
//	[2024-05-01 10:20:30.123] [INFO] listening on :8080
//
// File lines carry a single letter tag:
//
//	[2024-05-01 10:20:30.123] [I] listening on :8080
//
// # Files and rotation
//
// The first file record of a run creates a session directory named after the
// current time under the base directory and opens a file in it:
//
//	./log/20240501_10_20_30_123/20240501_10_20_30_123.log
//
// Before each write the file is stat'ed; when it is larger than the maximum
// size (10 MiB by default) it is closed and a new file is opened in the same
// session directory. Only one file is open at a time.
//
// # Thread Safety
//
// A [Logger] is safe for concurrent use. One mutex serializes setters and
// sink writes, so each line is written whole. The level and mode accessors
// read atomics and may be briefly stale while a setter runs.
//
// # Failures
//
// Logging never returns an error to the caller. File sink failures are
// reported on the console and the record is dropped from the file.
// [Logger.SetBaseDirectory] returns an error and keeps the previous directory
// when the new one cannot be created.
//
// # Reading logs back
//
// [ListSessions], [ReadSession], [FilterRecords] and [ExportRecords] parse
// session directories for the logs command.
package logging
