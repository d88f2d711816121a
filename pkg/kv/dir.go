package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const valueExt = ".json"

// TempFilePrefix marks in-flight value files so directory scans and the
// watcher can skip them.
const TempFilePrefix = "mulch-tmp-"

// selfWriteWindow is how long a key stays marked as "written by us" for the
// watcher's self-event suppression.
const selfWriteWindow = 2 * time.Second

// Dir implements Store on top of a directory: one JSON file per key, written
// atomically (temp file + rename). An optional byte budget makes the store
// reject writes that would exceed it, mirroring a browser storage quota.
type Dir struct {
	Path   string
	config DirConfig

	mu            sync.Mutex
	selfWrites    map[string]time.Time
	watcherActive bool
}

// DirConfig holds the configuration for a directory-backed store.
type DirConfig struct {
	Path      string
	Budget    int64 // Max total bytes across values; 0 means unlimited.
	AutoInit  bool  // Create the directory if missing.
	MustExist bool  // Fail Initialize when the directory is missing.
	Logger    *slog.Logger
}

// NewDir creates a directory-backed store.
func NewDir(config DirConfig) *Dir {
	return &Dir{
		Path:       config.Path,
		config:     config,
		selfWrites: make(map[string]time.Time),
	}
}

// Initialize ensures the backing directory is ready.
func (d *Dir) Initialize(ctx context.Context) error {
	if d.config.MustExist {
		info, err := os.Stat(d.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", d.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", d.Path)
		}
		return nil
	}
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Available probes writability by round-tripping a throwaway file.
func (d *Dir) Available(ctx context.Context) bool {
	probe := filepath.Join(d.Path, TempFilePrefix+"probe")
	if err := os.WriteFile(probe, []byte("{}"), 0644); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}

// Get reads the value for a key. Absent keys yield (nil, nil); bytes that are
// not valid JSON yield a parse_error.
func (d *Dir) Get(ctx context.Context, key string) (json.RawMessage, error) {
	path, err := d.keyPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError(KindUnavailable, key, err)
	}

	if !json.Valid(data) {
		return nil, NewError(KindParse, key, fmt.Errorf("stored value is not valid JSON"))
	}
	return json.RawMessage(data), nil
}

// Set writes the value for a key atomically, enforcing the byte budget.
func (d *Dir) Set(ctx context.Context, key string, value json.RawMessage) error {
	path, err := d.keyPath(key)
	if err != nil {
		return err
	}

	if d.config.Budget > 0 {
		used, err := d.usage()
		if err != nil {
			return NewError(KindWrite, key, err)
		}
		if info, err := os.Stat(path); err == nil {
			used -= info.Size()
		}
		if used+int64(len(value)) > d.config.Budget {
			return NewError(KindQuota, key,
				fmt.Errorf("write of %d bytes exceeds budget of %d", len(value), d.config.Budget))
		}
	}

	d.markSelf(key)
	if err := stageAndSwap(path, value, 0644); err != nil {
		return NewError(KindWrite, key, err)
	}
	return nil
}

// stageAndSwap lands a value on disk without ever exposing a torn file: the
// bytes go to a temp sibling first, then a rename swaps it into place.
func stageAndSwap(path string, value []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage temp value: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	_, err = tmp.Write(value)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("stage temp value: %w", err)
	}

	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("set value permissions: %w", err)
	}
	return os.Rename(name, path)
}

// Remove deletes a key. Absent keys are ignored.
func (d *Dir) Remove(ctx context.Context, key string) error {
	path, err := d.keyPath(key)
	if err != nil {
		return err
	}
	d.markSelf(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return NewError(KindWrite, key, err)
	}
	return nil
}

// Clear deletes every stored key.
func (d *Dir) Clear(ctx context.Context) error {
	keys, err := d.Keys(ctx, "")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := d.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists stored keys with the given prefix, sorted.
func (d *Dir) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(d.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError(KindUnavailable, "", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, valueExt) {
			continue
		}
		key := strings.TrimSuffix(name, valueExt)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Quota returns the remaining byte budget. ok is false when unlimited.
func (d *Dir) Quota(ctx context.Context) (int64, bool) {
	if d.config.Budget <= 0 {
		return 0, false
	}
	used, err := d.usage()
	if err != nil {
		return 0, false
	}
	remaining := d.config.Budget - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (d *Dir) usage() (int64, error) {
	entries, err := os.ReadDir(d.Path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, valueExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// keyPath maps a key to its backing file, rejecting keys that would escape
// the store directory.
func (d *Dir) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", NewError(KindWrite, key, fmt.Errorf("invalid key"))
	}
	return filepath.Join(d.Path, key+valueExt), nil
}

// markSelf records a write issued through this handle so the watcher can
// distinguish it from an external mutation.
func (d *Dir) markSelf(key string) {
	d.mu.Lock()
	d.selfWrites[key] = time.Now()
	d.mu.Unlock()
}

// consumeSelf reports and clears a recent self-write mark for the key.
func (d *Dir) consumeSelf(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	at, ok := d.selfWrites[key]
	if !ok {
		return false
	}
	delete(d.selfWrites, key)
	return time.Since(at) < selfWriteWindow
}

func (d *Dir) setWatcherActive(active bool) {
	d.mu.Lock()
	d.watcherActive = active
	d.mu.Unlock()
}

var _ Store = (*Dir)(nil)
