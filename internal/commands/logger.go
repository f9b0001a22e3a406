package commands

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotated log file inside the data directory
const LogFileName = "foldchat.log"

// newLogger writes to <dir>/foldchat.log, rotated at 10 MB with 3 backups.
// The TUI owns the terminal, so console output is opt-in through console.
func newLogger(dir, level string, console io.Writer) (zerolog.Logger, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: file, NoColor: true}
	if console != nil {
		out = io.MultiWriter(out, zerolog.ConsoleWriter{Out: console})
	}

	return zerolog.New(out).
		Level(parseLevel(level)).
		With().Timestamp().
		Logger(), file
}

// parseLevel maps a level name to zerolog, defaulting to info
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
