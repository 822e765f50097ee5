package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "debug", level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug"},
		{name: "info", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			lg.Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h slog.Handler) slog.Handler
		attrs      []any
		goldenName string
	}{
		{
			name:       "record attrs",
			setup:      func(h slog.Handler) slog.Handler { return h },
			attrs:      []any{"module", "src/a.js", "count", 2},
			goldenName: "handler_record_attrs",
		},
		{
			name: "group attr",
			setup: func(h slog.Handler) slog.Handler {
				return h.WithAttrs([]slog.Attr{slog.Group("cache", slog.Int("hits", 3))})
			},
			goldenName: "handler_group_attr",
		},
		{
			name: "nested groups",
			setup: func(h slog.Handler) slog.Handler {
				return h.WithGroup("build").WithGroup("chunk").WithAttrs([]slog.Attr{slog.String("name", "main")})
			},
			attrs:      []any{"size", 10},
			goldenName: "handler_nested_groups",
		},
		{
			name:       "empty group name",
			setup:      func(h slog.Handler) slog.Handler { return h.WithGroup("") },
			attrs:      []any{"key", "val"},
			goldenName: "handler_empty_group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(tt.setup(logger.NewPrettyHandler(buf, nil)))
			lg.Info("message", tt.attrs...)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestPrettyHandler_NilWriter(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		_ = logger.NewPrettyHandler(nil, nil)
	})
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken")
}

func TestPrettyHandler_ReturnsWriteError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	h := logger.NewPrettyHandler(brokenWriter{}, nil)
	r := slog.NewRecord(time0, slog.LevelInfo, "x", 0)
	require.Error(t, h.Handle(t.Context(), r))
}
