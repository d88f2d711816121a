package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWatch(t *testing.T, pattern string) (*Dir, <-chan Event, context.Context, context.CancelFunc) {
	t.Helper()
	d := newTestDir(t, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	events, err := d.Watch(ctx, pattern)
	require.NoError(t, err)
	require.NotNil(t, events)

	// Give the watcher a moment to arm.
	time.Sleep(100 * time.Millisecond)
	return d, events, ctx, cancel
}

func TestWatch_ExternalCreate(t *testing.T) {
	d, events, ctx, cancel := setupWatch(t, "*")
	defer cancel()

	// Simulate another process writing a value file directly.
	path := filepath.Join(d.Path, "notes-app-data"+valueExt)
	require.NoError(t, os.WriteFile(path, []byte(`{"v":1}`), 0644))

	select {
	case ev := <-events:
		assert.Equal(t, "notes-app-data", ev.Key)
		assert.Contains(t, []EventType{EventCreate, EventModify}, ev.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for external create")
	}
}

func TestWatch_ExternalDelete(t *testing.T) {
	d, events, ctx, cancel := setupWatch(t, "notes-app-*")
	defer cancel()

	path := filepath.Join(d.Path, "notes-app-tags"+valueExt)
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	select {
	case ev := <-events:
		require.Equal(t, "notes-app-tags", ev.Key)
	case <-ctx.Done():
		t.Fatal("timed out waiting for create")
	}

	require.NoError(t, os.Remove(path))

	select {
	case ev := <-events:
		assert.Equal(t, EventDelete, ev.Type)
		assert.Equal(t, "notes-app-tags", ev.Key)
	case <-ctx.Done():
		t.Fatal("timed out waiting for delete")
	}
}

func TestWatch_IgnoresSelfWrites(t *testing.T) {
	d, events, _, cancel := setupWatch(t, "*")
	defer cancel()

	// A write through this handle must not come back as an event.
	require.NoError(t, d.Set(context.Background(), "notes-app-data", []byte(`{"v":1}`)))

	select {
	case ev := <-events:
		t.Fatalf("self write surfaced as event: %+v", ev)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatch_PatternFilter(t *testing.T) {
	d, events, ctx, cancel := setupWatch(t, "notes-app-*")
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "unrelated"+valueExt), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "notes-app-prefs"+valueExt), []byte(`{}`), 0644))

	select {
	case ev := <-events:
		// Only the matching key may surface.
		assert.Equal(t, "notes-app-prefs", ev.Key)
	case <-ctx.Done():
		t.Fatal("timed out waiting for matching event")
	}
}

func TestWatch_ChannelClosesOnCancel(t *testing.T) {
	_, events, _, cancel := setupWatch(t, "*")

	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel did not close after cancel")
		}
	}
}

func TestWatch_IgnoresForeignFiles(t *testing.T) {
	d, events, _, cancel := setupWatch(t, "*")
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "README.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, TempFilePrefix+"junk"), []byte("x"), 0644))

	select {
	case ev := <-events:
		t.Fatalf("non-value file surfaced as event: %+v", ev)
	case <-time.After(500 * time.Millisecond):
	}
}
