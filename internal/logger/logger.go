package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file under the logs directory.
const LogFileName = "cienv.log"

var (
	// Log is the global logger instance
	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()

	// fileWriter is the file output for logging (with rotation)
	fileWriter *lumberjack.Logger

	// envSlug tags every entry with the environment being managed, if any.
	envSlug   string
	envSlugMu sync.RWMutex

	nop = zerolog.Nop()
)

// LoggingConfig holds configuration for file-based logging.
// Mirrors config.LoggingSettings without importing it.
type LoggingConfig struct {
	FileEnabled *bool
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to true if not explicitly set.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c.FileEnabled == nil {
		return true
	}
	return *c.FileEnabled
}

// GetMaxSizeMB returns the max size in MB, defaulting to 50 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 50
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// SetEnvironment tags subsequent log entries with an environment slug.
// Pass an empty string to clear.
func SetEnvironment(slug string) {
	envSlugMu.Lock()
	defer envSlugMu.Unlock()
	envSlug = slug
}

func withEnv(event *zerolog.Event) *zerolog.Event {
	envSlugMu.RLock()
	slug := envSlug
	envSlugMu.RUnlock()
	if slug != "" {
		event = event.Str("env", slug)
	}
	return event
}

func level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func consoleWriter(noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// Init initializes console-only logging on stderr.
func Init(debug bool) {
	Log = zerolog.New(consoleWriter(os.Getenv("NO_COLOR") != "")).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()
}

// InitWithFile initializes console logging plus a rotating JSON log file in
// logsDir. An empty logsDir or a disabled cfg behaves like Init.
func InitWithFile(debug bool, logsDir string, cfg *LoggingConfig) error {
	if logsDir == "" || cfg == nil || !cfg.IsFileEnabled() {
		Init(debug)
		return nil
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter = &lumberjack.Logger{
		Filename:   filepath.Join(logsDir, LogFileName),
		MaxSize:    cfg.GetMaxSizeMB(),
		MaxAge:     cfg.GetMaxAgeDays(),
		MaxBackups: cfg.GetMaxBackups(),
		LocalTime:  true,
	}

	// Console is human-readable, file is JSON.
	multi := io.MultiWriter(consoleWriter(os.Getenv("NO_COLOR") != ""), fileWriter)

	Log = zerolog.New(multi).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()

	return nil
}

// CloseFileWriter closes the file writer if it exists.
func CloseFileWriter() error {
	if fileWriter != nil {
		err := fileWriter.Close()
		fileWriter = nil
		return err
	}
	return nil
}

// GetLogFilePath returns the current log file, or "" when file logging is off.
func GetLogFilePath() string {
	if fileWriter != nil {
		return fileWriter.Filename
	}
	return ""
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger { return &nop }

// Debug logs a debug message
func Debug() *zerolog.Event { return withEnv(Log.Debug()) }

// Info logs an info message
func Info() *zerolog.Event { return withEnv(Log.Info()) }

// Warn logs a warning message
func Warn() *zerolog.Event { return withEnv(Log.Warn()) }

// Error logs an error message
func Error() *zerolog.Event { return withEnv(Log.Error()) }

// Global exposes the package logger through the four-method interface
// components accept, applying the environment tag.
type Global struct{}

func (Global) Debug() *zerolog.Event { return Debug() }
func (Global) Info() *zerolog.Event  { return Info() }
func (Global) Warn() *zerolog.Event  { return Warn() }
func (Global) Error() *zerolog.Event { return Error() }
