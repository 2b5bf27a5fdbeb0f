package patternmon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Constructors(t *testing.T) {
	var text, pretty bytes.Buffer

	NewTextLogger(&text, slog.LevelInfo).LogReceived(context.Background(), "quakes", 42)
	assert.Contains(t, text.String(), "component=pattern-monitor")
	assert.Contains(t, text.String(), "bytes=42")

	NewPrettyLogger(&pretty, slog.LevelInfo).LogReceived(context.Background(), "quakes", 42)
	assert.Contains(t, pretty.String(), "received message")
	assert.Contains(t, pretty.String(), "quakes")

	// Below the configured level.
	text.Reset()
	NewTextLogger(&text, slog.LevelInfo).LogStored(context.Background(), "event", "semantic:v1:event", 10)
	assert.Empty(t, text.String())
}

func TestLogger_Retrieval(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelDebug)

	l.LogRetrieval(context.Background(), "event", 5, 2, nil)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "results=2")

	buf.Reset()
	l.LogRetrieval(context.Background(), "event", 5, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger().With("subject", "x")
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
