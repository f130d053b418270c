package clog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingHandler 总是返回错误
type failingHandler struct{ calls int }

func (h *failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *failingHandler) Handle(context.Context, slog.Record) error {
	h.calls++
	return errors.New("sink down")
}
func (h *failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *failingHandler) WithGroup(string) slog.Handler      { return h }

func TestFanoutHandlerShapes(t *testing.T) {
	assert.Equal(t, slog.DiscardHandler, newFanoutHandler())
	assert.Equal(t, slog.DiscardHandler, newFanoutHandler(nil, nil))

	single := slog.NewTextHandler(&bytes.Buffer{}, nil)
	assert.Same(t, single, newFanoutHandler(nil, single))
}

func TestFanoutHandlerDeliversToAll(t *testing.T) {
	var a, b bytes.Buffer
	failing := &failingHandler{}
	h := newFanoutHandler(
		slog.NewTextHandler(&a, nil),
		failing,
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	h = h.WithAttrs([]slog.Attr{slog.String("app", "svc")}).WithGroup("g")
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	r.AddAttrs(slog.Int("n", 1))

	err := h.Handle(context.Background(), r)
	require.EqualError(t, err, "sink down")

	assert.Contains(t, a.String(), "app=svc")
	assert.Contains(t, a.String(), "g.n=1")
	assert.Equal(t, 1, failing.calls)
	assert.Empty(t, b.String())

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug-4))
}
