package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, nil))), buf
}

func TestSlogLogger_Levels(t *testing.T) {
	logger, buf := newBufferLogger()
	ctx := context.Background()

	logger.Info(ctx, "info msg", "k", "v")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	out := buf.String()
	for _, want := range []string{`"level":"INFO"`, `"level":"WARN"`, `"level":"ERROR"`, `"k":"v"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestSlogLogger_Debug(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	logger.Debug(ctx, "debug msg")
	if !strings.Contains(buf.String(), `"level":"DEBUG"`) {
		t.Errorf("output missing debug record:\n%s", buf.String())
	}

	// Suppressed at the default level.
	suppressed, defaultBuf := newBufferLogger()
	suppressed.Debug(ctx, "hidden")
	if defaultBuf.Len() != 0 {
		t.Errorf("debug record leaked at default level:\n%s", defaultBuf.String())
	}
}

func TestSlogLogger_With(t *testing.T) {
	logger, buf := newBufferLogger()

	child := logger.With("module", "media_service")
	child.Info(context.Background(), "msg")

	if !strings.Contains(buf.String(), `"module":"media_service"`) {
		t.Errorf("child logger missing bound attribute:\n%s", buf.String())
	}
}
