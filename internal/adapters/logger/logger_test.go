package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/logger"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

var time0 = time.Time{}

func TestLogger_ErrorChain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)

	err := zerr.With(zerr.Wrap(domain.ErrModuleNotFound, domain.ErrBuildFailed.Error()), "module", "src/a.js")
	l.Error(err)

	g := goldie.New(t)
	g.Assert(t, "logger_error_chain", buf.Bytes())
}

func TestLogger_Verbose(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	l.Debug("shown")
	assert.Equal(t, "○ shown\n", buf.String())

	l.SetVerbose(false)
	buf.Reset()
	l.Debug("hidden again")
	l.Info("info")
	assert.Equal(t, "info\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)
	l.SetJSON(true)

	l.Warn("careful")
	l.Error(zerr.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "careful", rec["msg"])

	require.NoError(t, json.Unmarshal(lines[1], &rec))
	assert.Equal(t, "operation failed", rec["msg"])
	// zerr errors log as a group through slog.LogValuer.
	assert.Equal(t, map[string]any{"msg": "boom"}, rec["error"])
}

func TestLogger_ErrorNil(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)
	l.Error(nil)
	assert.Empty(t, buf.String())
}
