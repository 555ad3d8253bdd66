package storage

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"newsapp/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessions_GetPut(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewMemorySessions(time.Minute, log)
	s := session.New(nil, session.KeepOnEmpty, "India", log)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Put("abc", s)
	got, ok := store.Get("abc")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessions_Sweep(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewMemorySessions(10*time.Minute, log)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	store.Put("idle", session.New(nil, session.KeepOnEmpty, "", log))
	store.Put("active", session.New(nil, session.KeepOnEmpty, "", log))

	current = base.Add(8 * time.Minute)
	_, ok := store.Get("active")
	require.True(t, ok)

	removed := store.Sweep(base.Add(15 * time.Minute))

	assert.Equal(t, 1, removed)
	_, ok = store.Get("idle")
	assert.False(t, ok)
	_, ok = store.Get("active")
	assert.True(t, ok)
}
