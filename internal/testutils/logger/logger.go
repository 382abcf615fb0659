/*
Package logger provides slog loggers for tests, output goes to the test log
so it is only shown for failed tests (or when running with -v).
*/
package logger

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alphabill-org/hexmerge/logger"
)

/*
New returns logger for test "t" with DEBUG level, the level can be changed
with HEXMERGE_TEST_LOG_LEVEL environment variable.
*/
func New(t testing.TB) *slog.Logger {
	lvl := slog.LevelDebug
	if s := os.Getenv("HEXMERGE_TEST_LOG_LEVEL"); s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			t.Fatalf("invalid HEXMERGE_TEST_LOG_LEVEL value %q: %v", s, err)
		}
	}
	return NewLvl(t, lvl)
}

// NewLvl returns logger for test "t" with given minimum level.
func NewLvl(t testing.TB, level slog.Level) *slog.Logger {
	cfg := &logger.LogConfiguration{
		Level:      level.String(),
		Format:     "console",
		TimeFormat: "15:04:05.0000",
	}
	h, err := logger.NewHandler(cfg, testLogWriter{t: t})
	if err != nil {
		t.Fatalf("creating test logger: %v", err)
	}
	return slog.New(h)
}

type testLogWriter struct {
	t testing.TB
}

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
