package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
	// levelNone is used to disable logging
	levelNone slog.Level = math.MaxInt32
)

/*
LogConfiguration describes the logger to build. Usually loaded from yaml file
and then overridden by command line flags.
*/
type LogConfiguration struct {
	Level      string `yaml:"defaultLevel"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"outputPath"`
	// "none" to omit time, Go time layout otherwise
	TimeFormat string `yaml:"timeFormat"`
}

/*
New creates logger based on configuration. Output is opened according to
cfg.OutputPath: "stdout", "stderr" (default) and "discard" are special values,
anything else is treated as file name (data is appended to the file).
*/
func New(cfg *LogConfiguration) (*slog.Logger, error) {
	out, err := cfg.writer()
	if err != nil {
		return nil, fmt.Errorf("opening log output: %w", err)
	}
	h, err := NewHandler(cfg, out)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// NewHandler creates log handler writing into "out", cfg.OutputPath is only used to detect "discard".
func NewHandler(cfg *LogConfiguration, out io.Writer) (slog.Handler, error) {
	opt := &slog.HandlerOptions{
		AddSource: true,
		Level:     cfg.logLevel(),
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		opt.ReplaceAttr = formatTimeAttr(cfg.TimeFormat)
		return slog.NewJSONHandler(out, opt), nil
	case "text", "":
		opt.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatDataAttrAsJSON)
		return slog.NewTextHandler(out, opt), nil
	case "ecs":
		opt.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatAttrECS)
		return slog.NewJSONHandler(out, opt), nil
	case "console":
		opt.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatConsoleAttr, formatDataAttrAsJSON)
		cw := zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !isTerminal(out),
			TimeFormat: "15:04:05.0000",
		}
		switch cfg.TimeFormat {
		case "":
		case "none":
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		default:
			cw.TimeFormat = cfg.TimeFormat
		}
		return slog.NewJSONHandler(cw, opt), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

/*
logLevel converts Level string to slog.Level. Besides the levels known to slog
(with optional offset, ie "info+1") "WARNING", "TRACE" and "NONE" are supported.
Empty or unknown value results in INFO level.
*/
func (cfg *LogConfiguration) logLevel() slog.Level {
	if cfg.OutputPath == "discard" || cfg.OutputPath == os.DevNull {
		return levelNone
	}

	switch strings.ToUpper(cfg.Level) {
	case "WARNING":
		return slog.LevelWarn
	case "TRACE":
		return LevelTrace
	case "NONE":
		return levelNone
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (cfg *LogConfiguration) writer() (io.Writer, error) {
	switch cfg.OutputPath {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard", os.DevNull:
		return io.Discard, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0700); err != nil {
			return nil, fmt.Errorf("creating directory for log file: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // -rw-------
		if err != nil {
			return nil, errors.Join(fmt.Errorf("opening log file %q", cfg.OutputPath), err)
		}
		return f, nil
	}
}

/*
formatConsoleAttr renames slog message and source attributes to the names zerolog
console writer expects, source is formatted as "file:line".
*/
func formatConsoleAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = zerolog.MessageFieldName
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			return slog.String(zerolog.CallerFieldName, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return a
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
