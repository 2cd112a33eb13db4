package view

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/majorcatalog/internal/model"
)

func TestRegistry_GetReturnsSameViewPerViewer(t *testing.T) {
	r := NewRegistry(newScriptedLoader(true), nil, Options{TTL: time.Minute}, zerolog.Nop())
	defer r.Close()

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepEvictsIdleViews(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(newScriptedLoader(true), nil, Options{TTL: 10 * time.Minute}, zerolog.Nop())
	r.now = func() time.Time { return now }
	defer r.Close()

	r.Get("old")
	now = now.Add(8 * time.Minute)
	r.Get("fresh")
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_TouchKeepsFollowedViewAlive(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(newScriptedLoader(true), nil, Options{TTL: 10 * time.Minute}, zerolog.Nop())
	r.now = func() time.Time { return now }
	defer r.Close()

	v := r.Get("streaming")
	for i := 0; i < 4; i++ {
		now = now.Add(5 * time.Minute)
		r.Touch("streaming")
	}
	r.Touch("unknown")

	assert.Equal(t, 0, r.Sweep())
	assert.Same(t, v, r.Get("streaming"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SweepCancelsInFlightLoad(t *testing.T) {
	loader := newScriptedLoader(true, "A")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(loader, nil, Options{TTL: time.Minute}, zerolog.Nop())
	r.now = func() time.Time { return now }
	defer r.Close()

	settled := r.Get("viewer").Navigate("A")
	waitStarted(t, loader, "A")

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.Sweep())
	waitClosed(t, settled)
}

func TestRegistry_RunClosesViewsOnShutdown(t *testing.T) {
	loader := newScriptedLoader(true, "A")
	r := NewRegistry(loader, nil, Options{TTL: time.Hour}, zerolog.Nop())

	v := r.Get("viewer")
	settled := v.Navigate("A")
	waitStarted(t, loader, "A")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	waitClosed(t, done)
	waitClosed(t, settled)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, model.StatusUnavailable, v.Snapshot().Status)
}

func TestRegistry_DoneAfterClose(t *testing.T) {
	r := NewRegistry(newScriptedLoader(true), nil, Options{}, zerolog.Nop())

	select {
	case <-r.Done():
		t.Fatal("done before close")
	default:
	}

	r.Close()
	waitClosed(t, r.Done())
}
