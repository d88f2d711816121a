package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/kv"
)

// DefaultDebounce is the quiet period a key's write waits for. Bursts of
// keystroke-driven saves within it collapse into a single write.
const DefaultDebounce = 300 * time.Millisecond

// DefaultBackupKeep is how many snapshots are retained per backed-up key.
const DefaultBackupKeep = 3

// Manager mirrors state slices into a kv.Store. It never owns or mutates the
// in-memory model; it only observes values handed to Save and writes them out
// debounced, with backup and recovery around every overwrite.
type Manager struct {
	store    kv.Store
	logger   *slog.Logger
	signals  *core.Signals
	debounce time.Duration
	keep     int
	backed   map[string]bool
	now      func() time.Time

	sched *scheduler

	mu      sync.Mutex
	pending map[string]json.RawMessage
	written map[string]string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithSignals sets the bus terminal failures are reported on.
func WithSignals(s *core.Signals) ManagerOption {
	return func(m *Manager) { m.signals = s }
}

// WithDebounce overrides the write quiet period.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) { m.debounce = d }
}

// WithBackupKeep overrides how many snapshots are retained per key.
func WithBackupKeep(n int) ManagerOption {
	return func(m *Manager) { m.keep = n }
}

// WithBackupKeys overrides which keys get backup-before-overwrite.
func WithBackupKeys(keys ...string) ManagerOption {
	return func(m *Manager) {
		m.backed = make(map[string]bool, len(keys))
		for _, k := range keys {
			m.backed[k] = true
		}
	}
}

// WithClock injects the time source used for snapshot stamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over the given store. By default notes and
// tags get backup-before-overwrite; preferences and metadata do not.
func NewManager(store kv.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		debounce: DefaultDebounce,
		keep:     DefaultBackupKeep,
		backed:   map[string]bool{KeyNotes: true, KeyTags: true},
		now:      time.Now,
		sched:    newScheduler(),
		pending:  make(map[string]json.RawMessage),
		written:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.signals == nil {
		m.signals = core.NewSignals()
	}
	return m
}

// Store exposes the underlying adapter (import needs direct access for the
// metadata key).
func (m *Manager) Store() kv.Store {
	return m.store
}

// Signals exposes the bus terminal failures are reported on.
func (m *Manager) Signals() *core.Signals {
	return m.signals
}

// Save schedules a debounced write of v under key. If the serialized value
// equals the last value written for that key, any pending write is cancelled
// and nothing is scheduled.
func (m *Manager) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return kv.NewError(kv.KindWrite, key, err)
	}

	m.mu.Lock()
	if string(raw) == m.written[key] {
		delete(m.pending, key)
		m.mu.Unlock()
		m.sched.Cancel(key)
		return nil
	}
	m.pending[key] = raw
	m.mu.Unlock()

	m.sched.Schedule(key, m.debounce, func() {
		if err := m.flushKey(context.Background(), key); err != nil && m.logger != nil {
			m.logger.Error("debounced write failed", "key", key, "error", err)
		}
	})
	return nil
}

// SaveNow writes v under key immediately, cancelling any pending write.
func (m *Manager) SaveNow(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return kv.NewError(kv.KindWrite, key, err)
	}

	m.sched.Cancel(key)
	m.mu.Lock()
	delete(m.pending, key)
	m.mu.Unlock()

	return m.write(ctx, key, raw)
}

// Flush forces every pending write out now.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.pending))
	for key := range m.pending {
		keys = append(keys, key)
	}
	m.mu.Unlock()

	var errs []error
	for _, key := range keys {
		m.sched.Cancel(key)
		if err := m.flushKey(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop flushes pending writes and shuts the scheduler down.
func (m *Manager) Stop(ctx context.Context) error {
	err := m.Flush(ctx)
	m.sched.Stop()
	return err
}

func (m *Manager) flushKey(ctx context.Context, key string) error {
	m.mu.Lock()
	raw, ok := m.pending[key]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.pending, key)
	if string(raw) == m.written[key] {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.write(ctx, key, raw)
}

// write persists one value: snapshot the current value first (for backed-up
// keys), then overwrite, recovering once from a quota rejection.
func (m *Manager) write(ctx context.Context, key string, raw json.RawMessage) error {
	if m.backed[key] {
		m.backup(ctx, key)
	}

	err := m.store.Set(ctx, key, raw)
	if kv.IsQuota(err) {
		if m.logger != nil {
			m.logger.Warn("storage quota exceeded, pruning backups", "key", key)
		}
		m.recoverQuota(ctx)
		err = m.store.Set(ctx, key, raw)
	}
	if err != nil {
		m.fail(key, err)
		return err
	}

	m.mu.Lock()
	m.written[key] = string(raw)
	m.mu.Unlock()
	return nil
}

// backup snapshots the current stored value under a timestamped backup key
// and prunes old snapshots. A corrupt current value is not worth preserving.
func (m *Manager) backup(ctx context.Context, key string) {
	cur, err := m.store.Get(ctx, key)
	if err != nil || cur == nil {
		return
	}

	bk := backupKey(key, m.now().UnixNano())
	if err := m.store.Set(ctx, bk, cur); err != nil {
		if m.logger != nil {
			m.logger.Warn("backup write failed", "key", key, "error", err)
		}
		return
	}
	m.pruneBackups(ctx, key, m.keep)
}

// pruneBackups removes a key's oldest snapshots beyond keep.
func (m *Manager) pruneBackups(ctx context.Context, key string, keep int) {
	keys, err := m.store.Keys(ctx, backupPrefix(key))
	if err != nil {
		return
	}
	sort.Strings(keys) // fixed-width stamps: oldest first
	if len(keys) <= keep {
		return
	}
	for _, bk := range keys[:len(keys)-keep] {
		if err := m.store.Remove(ctx, bk); err != nil && m.logger != nil {
			m.logger.Warn("failed to prune backup", "key", bk, "error", err)
		}
	}
}

// recoverQuota frees space after a quota rejection: drop every snapshot of
// the superseded key scheme, then prune remaining backups to one per key.
func (m *Manager) recoverQuota(ctx context.Context) {
	for _, legacy := range LegacyKeys {
		keys, err := m.store.Keys(ctx, backupPrefix(legacy))
		if err != nil {
			continue
		}
		for _, bk := range keys {
			_ = m.store.Remove(ctx, bk)
		}
	}

	keys, err := m.store.Keys(ctx, "")
	if err != nil {
		return
	}
	bases := make(map[string]bool)
	for _, k := range keys {
		if base, ok := splitBackupKey(k); ok {
			bases[base] = true
		}
	}
	for base := range bases {
		m.pruneBackups(ctx, base, 1)
	}
}

// fail reports a terminal storage failure on the signal bus. The in-memory
// state is untouched; the UI layer is expected to suggest export-and-clear.
func (m *Manager) fail(key string, err error) {
	if m.logger != nil {
		m.logger.Error("storage write failed", "key", key, "kind", kv.KindOf(err), "error", err)
	}
	m.signals.Notify(core.Signal{
		Kind:    core.SignalStorageError,
		Key:     key,
		Message: "saving failed; export your data and clear storage to recover space",
		Err:     err,
	})
}

// Load reads a key, validates it, and falls back to the newest validating
// backup when the primary value is missing, corrupt or invalid. An adopted
// backup is re-persisted under the primary key. Only when no backup validates
// does the caller-supplied default win.
func Load[T any](ctx context.Context, m *Manager, key string, valid func(T) bool, def T) (T, error) {
	raw, err := m.store.Get(ctx, key)
	if err == nil && raw != nil {
		var val T
		if jsonErr := json.Unmarshal(raw, &val); jsonErr == nil && valid(val) {
			m.mu.Lock()
			m.written[key] = string(raw)
			m.mu.Unlock()
			return val, nil
		}
		err = kv.NewError(kv.KindParse, key, fmt.Errorf("stored value failed validation"))
	}
	if err != nil && m.logger != nil {
		m.logger.Warn("primary value unusable, searching backups", "key", key, "error", err)
	}
	if raw == nil && err == nil {
		// Nothing stored yet; not a recovery situation.
		return def, nil
	}

	if val, ok := loadFromBackups(ctx, m, key, valid); ok {
		return val, nil
	}
	return def, err
}

func loadFromBackups[T any](ctx context.Context, m *Manager, key string, valid func(T) bool) (T, bool) {
	var zero T

	keys, err := m.store.Keys(ctx, backupPrefix(key))
	if err != nil {
		return zero, false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys))) // newest first

	for _, bk := range keys {
		raw, err := m.store.Get(ctx, bk)
		if err != nil || raw == nil {
			continue
		}
		var val T
		if err := json.Unmarshal(raw, &val); err != nil || !valid(val) {
			continue
		}

		if m.logger != nil {
			m.logger.Warn("recovered value from backup", "key", key, "backup", bk)
		}
		if err := m.write(ctx, key, raw); err != nil && m.logger != nil {
			m.logger.Warn("failed to re-persist recovered value", "key", key, "error", err)
		}
		return val, true
	}
	return zero, false
}

// OnExternalChange subscribes to external mutations of a key. Each validated
// notification triggers a re-read; the raw value (nil when the key was
// removed) is handed to fn for validation and adoption. Read failures are
// logged and the in-memory state is left alone.
func (m *Manager) OnExternalChange(ctx context.Context, key string, fn func(json.RawMessage)) (func(), error) {
	w, ok := m.store.(kv.Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := w.Watch(subCtx, key)
	if err != nil {
		cancel()
		return nil, err
	}

	lifecycle.Go(subCtx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				m.handleExternal(ctx, ev, fn)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if m.logger != nil {
			m.logger.Error("external change loop failed", "key", key, "error", err)
		}
	}))

	return cancel, nil
}

func (m *Manager) handleExternal(ctx context.Context, ev kv.Event, fn func(json.RawMessage)) {
	raw, err := m.store.Get(ctx, ev.Key)
	if err != nil {
		// Fail-safe: a broken external value never displaces local state.
		if m.logger != nil {
			m.logger.Warn("ignoring unreadable external change", "key", ev.Key, "error", err)
		}
		return
	}

	// Remember what is now on disk so reconciliation does not echo a write.
	m.mu.Lock()
	m.written[ev.Key] = string(raw)
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Debug("external change", "key", ev.Key, "type", ev.Type)
	}
	m.signals.Notify(core.Signal{Kind: core.SignalExternalChange, Key: ev.Key})
	fn(raw)
}
