package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(zapcore.AddSync(&buf))
	SetLevel(LevelInfo)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Debug("hidden detail", "k", 1)
	Info("read events", "count", 42)
	assert.NotContains(t, buf.String(), "hidden detail")
	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "read events")
	assert.Contains(t, buf.String(), "42")

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG]")

	buf.Reset()
	SetLevel(LevelError)
	Warn("dropped")
	Error("run failed", errors.New("boom"), "file", "cal.ics")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "run failed")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "cal.ics")
}
