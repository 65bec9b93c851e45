package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/foodbridge/foodbridge/internal/config"
)

const (
	DefaultLogFileName = "foodbridge.log"
	DefaultMaxSizeMB   = 20
	DefaultMaxBackups  = 3
	DefaultMaxAgeDays  = 14
	DefaultCompress    = true

	timeFormat = "2006-01-02 15:04:05"
)

// Options controls where and how much the process logs.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string
	// FilePath is the rotating log file. Empty disables file output.
	FilePath string
	// Console receives human-readable output. Nil means stderr.
	Console io.Writer
}

// LevelFromVerbosity maps the -v flag count to a level name.
func LevelFromVerbosity(verbosity int) string {
	switch {
	case verbosity >= 2:
		return "trace"
	case verbosity == 1:
		return "debug"
	default:
		return ""
	}
}

// Apply sets the global level and installs console plus rotating-file writers.
// Rotation limits come from the log.* settings when loader is non-nil.
func Apply(opts Options, loader *config.Loader) {
	zerolog.SetGlobalLevel(parseLevel(opts.Level))

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()

	if opts.FilePath == "" {
		return
	}
	if err := ensureLogDir(opts.FilePath); err != nil {
		log.Error().Err(err).Str("path", opts.FilePath).Msg("Failed to prepare log directory; logging to console only")
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    positive(loader.Int("log.max_size_mb", DefaultMaxSizeMB), DefaultMaxSizeMB),
		MaxBackups: nonNegative(loader.Int("log.max_backups", DefaultMaxBackups), DefaultMaxBackups),
		MaxAge:     nonNegative(loader.Int("log.max_age_days", DefaultMaxAgeDays), DefaultMaxAgeDays),
		Compress:   loader.Bool("log.compress", DefaultCompress),
	}
	file := zerolog.ConsoleWriter{Out: fileWriter, TimeFormat: timeFormat, NoColor: true}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func nonNegative(v, fallback int) int {
	if v >= 0 {
		return v
	}
	return fallback
}

// FilePathForDB returns a log file path that lives alongside the database file.
func FilePathForDB(dbPath string) string {
	if dbPath == "" {
		return DefaultLogFileName
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return filepath.Join(filepath.Dir(dbPath), DefaultLogFileName)
	}
	return filepath.Join(filepath.Dir(absDBPath), DefaultLogFileName)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
