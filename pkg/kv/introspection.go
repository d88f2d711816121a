package kv

import (
	"context"

	"github.com/aretw0/introspection"
)

// DirState exposes internal state for observability.
type DirState struct {
	Path          string `json:"path"`
	Budget        int64  `json:"budget"`
	UsedBytes     int64  `json:"used_bytes"`
	KeyCount      int    `json:"key_count"`
	WatcherActive bool   `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (d *Dir) State() any {
	used, _ := d.usage()
	keys, _ := d.Keys(context.Background(), "")

	d.mu.Lock()
	active := d.watcherActive
	d.mu.Unlock()

	return DirState{
		Path:          d.Path,
		Budget:        d.config.Budget,
		UsedBytes:     used,
		KeyCount:      len(keys),
		WatcherActive: active,
	}
}

// ComponentType implements introspection.Component.
func (d *Dir) ComponentType() string {
	return "kv-dir"
}

var _ introspection.Introspectable = (*Dir)(nil)
var _ introspection.Component = (*Dir)(nil)
