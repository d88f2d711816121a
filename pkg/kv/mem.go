package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Mem is an in-memory Store for tests and embedding. It supports the same
// budget semantics as Dir plus fault injection, and can replay synthetic
// external-change events to Watch subscribers.
type Mem struct {
	mu     sync.Mutex
	values map[string]json.RawMessage

	Budget int64 // Max total bytes; 0 means unlimited.

	// FailNextSet, when non-nil, is returned by the next Set call and then
	// cleared. FailSets stays in effect until reset.
	FailNextSet error
	FailSets    error
	Down        bool // Available reports false while set.

	SetCalls int

	watchMu  sync.Mutex
	nextSub  int
	watchers map[int]*memWatcher
}

type memWatcher struct {
	pattern string
	ch      chan Event
	ctx     context.Context
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		values:   make(map[string]json.RawMessage),
		watchers: make(map[int]*memWatcher),
	}
}

// Available reports writability.
func (m *Mem) Available(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Down
}

// Get returns the value for a key, nil if absent.
func (m *Mem) Get(ctx context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, NewError(KindParse, key, fmt.Errorf("stored value is not valid JSON"))
	}
	return append(json.RawMessage(nil), raw...), nil
}

// Set stores a value, honouring budget and injected faults.
func (m *Mem) Set(ctx context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++

	if m.FailNextSet != nil {
		err := m.FailNextSet
		m.FailNextSet = nil
		return err
	}
	if m.FailSets != nil {
		return m.FailSets
	}

	if m.Budget > 0 {
		used := m.usageLocked()
		used -= int64(len(m.values[key]))
		if used+int64(len(value)) > m.Budget {
			return NewError(KindQuota, key,
				fmt.Errorf("write of %d bytes exceeds budget of %d", len(value), m.Budget))
		}
	}

	m.values[key] = append(json.RawMessage(nil), value...)
	return nil
}

// Put stores raw bytes without validation or fault injection. Tests use it to
// plant corrupted values.
func (m *Mem) Put(key string, raw []byte) {
	m.mu.Lock()
	m.values[key] = append(json.RawMessage(nil), raw...)
	m.mu.Unlock()
}

// Remove deletes a key.
func (m *Mem) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Clear deletes all keys.
func (m *Mem) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.values = make(map[string]json.RawMessage)
	m.mu.Unlock()
	return nil
}

// Keys lists stored keys with the given prefix, sorted.
func (m *Mem) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.values {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Quota returns the remaining budget; ok is false when unlimited.
func (m *Mem) Quota(ctx context.Context) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Budget <= 0 {
		return 0, false
	}
	remaining := m.Budget - m.usageLocked()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (m *Mem) usageLocked() int64 {
	var total int64
	for _, v := range m.values {
		total += int64(len(v))
	}
	return total
}

// Watch returns a channel fed by EmitExternal for matching keys.
func (m *Mem) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	id := m.nextSub
	m.nextSub++

	w := &memWatcher{pattern: pattern, ch: make(chan Event, 16), ctx: ctx}
	m.watchers[id] = w

	go func() {
		<-ctx.Done()
		m.watchMu.Lock()
		delete(m.watchers, id)
		m.watchMu.Unlock()
		close(w.ch)
	}()

	return w.ch, nil
}

// EmitExternal simulates another process mutating the key: it delivers a
// change event to every matching watcher.
func (m *Mem) EmitExternal(key string, t EventType) {
	ev := Event{Type: t, Key: key, Timestamp: time.Now().Unix()}

	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, w := range m.watchers {
		if match, err := doublestar.Match(w.pattern, key); err != nil || !match {
			continue
		}
		select {
		case w.ch <- ev:
		case <-w.ctx.Done():
		}
	}
}

var (
	_ Store     = (*Mem)(nil)
	_ Watchable = (*Mem)(nil)
)
