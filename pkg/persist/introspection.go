package persist

import (
	"time"

	"github.com/aretw0/introspection"
)

// ManagerState exposes internal state for observability.
type ManagerState struct {
	Debounce    time.Duration `json:"debounce"`
	BackupKeep  int           `json:"backup_keep"`
	PendingKeys []string      `json:"pending_keys,omitempty"`
}

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	m.mu.Lock()
	pending := make([]string, 0, len(m.pending))
	for key := range m.pending {
		pending = append(pending, key)
	}
	m.mu.Unlock()

	return ManagerState{
		Debounce:    m.debounce,
		BackupKeep:  m.keep,
		PendingKeys: pending,
	}
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "persistence-manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)
