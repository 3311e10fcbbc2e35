package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"quickstart/internal/config"
)

// LogFileName is the file NewFromConfig appends to inside the log directory.
const LogFileName = "quickstart.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths and ErrorOutputPaths name destinations: "stdout",
	// "stderr", or a file path. Both lists feed the same handler and
	// duplicates are written once.
	OutputPaths      []string
	ErrorOutputPaths []string
	// Development records the caller on every line, not only at debug.
	Development bool
}

type format int

const (
	formatConsole format = iota
	formatJSON
)

func parseFormat(raw string) (format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "console":
		return formatConsole, nil
	case "json":
		return formatJSON, nil
	}
	return 0, fmt.Errorf("log format: unsupported value %q", raw)
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	f, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	w, err := openSinks(destinations(opts))
	if err != nil {
		return nil, err
	}

	if f == formatJSON {
		return slog.New(newJSONHandler(w, level, addSource)), nil
	}
	return slog.New(newPrettyHandler(w, level, addSource)), nil
}

// NewFromConfig logs to stdout and, when a log directory is configured, to
// LogFileName inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if dir := cfg.Paths.LogDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file := filepath.Join(dir, LogFileName)
		opts.OutputPaths = []string{"stdout", file}
		opts.ErrorOutputPaths = []string{"stderr", file}
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// destinations merges both path lists in order, dropping blanks and repeats.
func destinations(opts Options) []string {
	out := opts.OutputPaths
	if len(out) == 0 {
		out = []string{"stdout"}
	}
	errs := opts.ErrorOutputPaths
	if len(errs) == 0 {
		errs = []string{"stderr"}
	}

	var merged []string
	for _, path := range slices.Concat(out, errs) {
		path = strings.TrimSpace(path)
		if path == "" || slices.Contains(merged, path) {
			continue
		}
		merged = append(merged, path)
	}
	return merged
}

func openSinks(paths []string) (io.Writer, error) {
	writers := make([]io.Writer, 0, len(paths))
	for _, path := range paths {
		w, err := openSink(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// newJSONHandler emits ts/level/msg keys with UTC RFC3339 timestamps and
// short file:line sources.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
