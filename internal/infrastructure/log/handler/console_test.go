package handler

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleHandler_LevelAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)

	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: lv})).
		With("service", "todokit", "module", "storage", "component", "sqlite")

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("opened", "path", "/tmp/x.db")
	out := buf.String()
	assert.Contains(t, out, "[storage/sqlite]")
	assert.Contains(t, out, "opened")
	assert.Contains(t, out, "path=/tmp/x.db")
	assert.NotContains(t, out, "service=")
	assert.Equal(t, 1, strings.Count(out, "\n"))

	buf.Reset()
	lv.Set(slog.LevelDebug)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestConsoleHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, nil)

	logger := slog.New(h).WithGroup("req").With("id", "abc")
	logger.Warn("slow")

	assert.Contains(t, buf.String(), "req.id=abc")
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
