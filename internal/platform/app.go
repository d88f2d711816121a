package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/kv"
	"github.com/aretw0/mulch/pkg/persist"
	"github.com/aretw0/mulch/pkg/transfer"
)

// DefaultSystemDir is the hidden directory holding per-vault configuration.
const DefaultSystemDir = ".mulch"

// App is the assembled application: state store, persistence manager and
// storage adapter wired together with an explicit lifecycle.
type App struct {
	Store   *core.Store
	Manager *persist.Manager
	KV      kv.Store
	Signals *core.Signals

	logger  *slog.Logger
	cancels []func()
}

// New opens (or initializes) a vault at path and wires the full app: load
// each slice with recovery, migrate the legacy key scheme, subscribe the
// persistence manager to state changes and reconcile external mutations.
func New(path string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	autoInit, _ := o.config["auto_init"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	watch, watchSet := o.config["watch"].(bool)

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	if systemDir == "" {
		systemDir = DefaultSystemDir
	}

	useTemp := tempDir || (IsDevRun() && devSafety)
	resolvedPath := ResolveVaultPath(path, useTemp)
	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	vaultCfg, err := loadVaultConfig(resolvedPath, systemDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault config: %w", err)
	}

	budget, _ := o.config["budget"].(int64)
	if budget == 0 {
		budget = vaultCfg.BudgetBytes
	}
	debounce, _ := o.config["debounce"].(time.Duration)
	if debounce == 0 && vaultCfg.DebounceMS > 0 {
		debounce = time.Duration(vaultCfg.DebounceMS) * time.Millisecond
	}
	if debounce == 0 {
		debounce = persist.DefaultDebounce
	}
	keep, _ := o.config["backup_keep"].(int)
	if keep == 0 {
		keep = vaultCfg.BackupKeep
	}
	if keep == 0 {
		keep = persist.DefaultBackupKeep
	}
	if !watchSet && vaultCfg.Watch != nil {
		watch = *vaultCfg.Watch
	}

	signals := o.signals
	if signals == nil {
		signals = core.NewSignals()
	}

	// Storage adapter.
	store := o.store
	if store == nil {
		dir := kv.NewDir(kv.DirConfig{
			Path:      resolvedPath,
			Budget:    budget,
			AutoInit:  autoInit,
			MustExist: mustExist || (!autoInit && !useTemp),
			Logger:    o.logger,
		})
		if err := dir.Initialize(context.Background()); err != nil {
			return nil, err
		}
		if err := ensureSystemDir(resolvedPath, systemDir); err != nil {
			return nil, err
		}
		store = dir
	}

	ctx := context.Background()
	if !store.Available(ctx) {
		return nil, kv.NewError(kv.KindUnavailable, "", fmt.Errorf("store at %s is not writable", resolvedPath))
	}

	mgr := persist.NewManager(store,
		persist.WithLogger(o.logger),
		persist.WithSignals(signals),
		persist.WithDebounce(debounce),
		persist.WithBackupKeep(keep),
	)

	if err := migrateLegacy(ctx, store, o.logger); err != nil {
		return nil, err
	}

	// Load each slice with backup recovery; defaults only when storage and
	// every backup are unusable.
	notes, err := persist.Load(ctx, mgr, persist.KeyNotes, core.ValidNotes, []core.Note(nil))
	if err != nil && o.logger != nil {
		o.logger.Warn("notes unrecoverable, starting empty", "error", err)
	}
	tags, err := persist.Load(ctx, mgr, persist.KeyTags, core.ValidTags, []core.Tag(nil))
	if err != nil && o.logger != nil {
		o.logger.Warn("tags unrecoverable, starting empty", "error", err)
	}
	prefs, err := persist.Load(ctx, mgr, persist.KeyPrefs, core.ValidPreferences, core.DefaultPreferences())
	if err != nil && o.logger != nil {
		o.logger.Warn("preferences unrecoverable, using defaults", "error", err)
	}

	initial := core.NewState()
	initial.Notes = notes
	initial.Tags = tags
	initial.Preferences = prefs

	reducer := core.NewReducer()
	if now, ok := o.config["clock"].(core.Clock); ok && now != nil {
		reducer.Now = now
	}
	if fn, ok := o.config["id_func"].(core.IDFunc); ok && fn != nil {
		reducer.NewID = fn
	}

	stateStore := core.NewStore(initial,
		core.WithReducer(reducer),
		core.WithStoreLogger(o.logger),
	)

	app := &App{
		Store:   stateStore,
		Manager: mgr,
		KV:      store,
		Signals: signals,
		logger:  o.logger,
	}

	// Mirror every committed transition into storage. The manager's equality
	// short-circuit drops the slices a transition did not touch.
	unsub := stateStore.Subscribe(func(old, next core.State, act core.Action) {
		if act == nil {
			// External reconciliation already matches what is on disk.
			return
		}
		_ = mgr.Save(ctx, persist.KeyNotes, next.Notes)
		_ = mgr.Save(ctx, persist.KeyTags, next.Tags)
		_ = mgr.Save(ctx, persist.KeyPrefs, next.Preferences)
	})
	app.cancels = append(app.cancels, unsub)

	if watch {
		if err := app.watchExternal(ctx); err != nil && o.logger != nil {
			o.logger.Warn("external change reconciliation disabled", "error", err)
		}
	}

	return app, nil
}

// watchExternal subscribes the three data keys to external mutations and
// adopts validated updates wholesale (last writer wins, no merge).
func (a *App) watchExternal(ctx context.Context) error {
	cancel, err := a.Manager.OnExternalChange(ctx, persist.KeyNotes, func(raw json.RawMessage) {
		adopt(a, raw, core.ValidNotes, func(v []core.Note) { a.Store.ReplaceNotes(v) })
	})
	if err != nil {
		return err
	}
	a.cancels = append(a.cancels, cancel)

	cancel, err = a.Manager.OnExternalChange(ctx, persist.KeyTags, func(raw json.RawMessage) {
		adopt(a, raw, core.ValidTags, func(v []core.Tag) { a.Store.ReplaceTags(v) })
	})
	if err != nil {
		return err
	}
	a.cancels = append(a.cancels, cancel)

	cancel, err = a.Manager.OnExternalChange(ctx, persist.KeyPrefs, func(raw json.RawMessage) {
		adopt(a, raw, core.ValidPreferences, func(v core.Preferences) { a.Store.ReplacePreferences(v) })
	})
	if err != nil {
		return err
	}
	a.cancels = append(a.cancels, cancel)
	return nil
}

// adopt validates an external value and applies it; anything invalid is
// logged and dropped, leaving local state untouched.
func adopt[T any](a *App, raw json.RawMessage, valid func(T) bool, apply func(T)) {
	if raw == nil {
		// Key removed externally: adopt the empty value.
		var zero T
		apply(zero)
		return
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil || !valid(val) {
		if a.logger != nil {
			a.logger.Warn("ignoring invalid external value")
		}
		return
	}
	apply(val)
}

// Export serializes the current state as the versioned envelope.
func (a *App) Export() ([]byte, error) {
	return transfer.Export(a.Store.State())
}

// Import validates and applies an envelope: storage first, then the
// in-memory collections, wholesale.
func (a *App) Import(ctx context.Context, raw []byte) error {
	data, err := transfer.Import(raw)
	if err != nil {
		return err
	}
	if err := transfer.Apply(ctx, a.Manager, data); err != nil {
		return err
	}
	a.Store.Dispatch(core.ImportData{Data: data})
	return nil
}

// Close flushes pending writes and releases watchers.
func (a *App) Close(ctx context.Context) error {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
	return a.Manager.Stop(ctx)
}

// migrateLegacy adopts values from the superseded app.*.v1 key scheme when
// the descriptive key is empty, then removes the legacy key. Runs once per
// open; a vault without legacy keys is untouched.
func migrateLegacy(ctx context.Context, store kv.Store, logger *slog.Logger) error {
	migrated := false

	for _, key := range append([]string{}, persist.DataKeys...) {
		legacy := persist.LegacyFor(key)
		if legacy == "" {
			continue
		}

		cur, err := store.Get(ctx, key)
		if err != nil {
			continue
		}
		if cur != nil {
			// The descriptive key is authoritative and the superseded copy
			// is never read again; drop it so it stops counting against the
			// byte budget.
			_ = store.Remove(ctx, legacy)
			continue
		}
		old, err := store.Get(ctx, legacy)
		if err != nil || old == nil {
			// Unreadable legacy data is not worth carrying forward.
			_ = store.Remove(ctx, legacy)
			continue
		}

		if err := store.Set(ctx, key, old); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", legacy, err)
		}
		_ = store.Remove(ctx, legacy)
		migrated = true

		if logger != nil {
			logger.Info("migrated legacy key", "from", legacy, "to", key)
		}
	}

	// The legacy meta key has no descriptive value worth keeping.
	_ = store.Remove(ctx, persist.LegacyKeyMeta)

	if migrated {
		now := time.Now()
		meta, _, err := kv.GetJSON[core.Meta](ctx, store, persist.KeyMeta)
		if err != nil {
			meta = core.Meta{}
		}
		meta.Version = core.AppDataVersion
		meta.MigratedAt = &now
		if err := kv.SetJSON(ctx, store, persist.KeyMeta, meta); err != nil {
			return err
		}
	}
	return nil
}

func ensureSystemDir(vaultPath, systemDir string) error {
	return os.MkdirAll(filepath.Join(vaultPath, systemDir), 0755)
}
