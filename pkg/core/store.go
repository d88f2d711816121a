package core

import (
	"log/slog"
	"sync"
)

// Store owns the canonical state and is its sole mutator. Transitions run to
// completion one at a time; the mutex serialises dispatch from the caller and
// from external-change reconciliation.
type Store struct {
	mu      sync.RWMutex
	state   State
	reducer Reducer
	logger  *slog.Logger

	subMu  sync.Mutex
	nextID int
	subs   map[int]Subscriber
}

// Subscriber observes committed transitions. act is nil when the change came
// from external reconciliation rather than a dispatched action.
type Subscriber func(old, next State, act Action)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithReducer injects a reducer (typically to pin the clock and ID source).
func WithReducer(r Reducer) StoreOption {
	return func(s *Store) { s.reducer = r }
}

// WithStoreLogger sets the logger used for dispatch tracing.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a store seeded with the given state.
func NewStore(initial State, opts ...StoreOption) *Store {
	s := &Store{
		state:   initial,
		reducer: NewReducer(),
		subs:    make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state. The snapshot shares backing
// arrays with the store but transitions never mutate them, so it is safe to
// read concurrently.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies an action and notifies subscribers of the transition.
func (s *Store) Dispatch(act Action) State {
	s.mu.Lock()
	old := s.state
	next := s.reducer.Apply(old, act)
	s.state = next
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("dispatch", "action", actionName(act))
	}
	s.notify(old, next, act)
	return next
}

// Subscribe registers an observer and returns its cancel function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// ReplaceNotes overwrites the notes slice with an externally validated value.
// Last writer wins; no merge is attempted.
func (s *Store) ReplaceNotes(notes []Note) {
	s.replace(func(st *State) {
		st.Notes = append([]Note(nil), notes...)
		if st.SelectedID != "" && noteIndex(st.Notes, st.SelectedID) < 0 {
			st.SelectedID = ""
			st.Editing = false
		}
	})
}

// ReplaceTags overwrites the tags slice with an externally validated value.
func (s *Store) ReplaceTags(tags []Tag) {
	s.replace(func(st *State) {
		st.Tags = append([]Tag(nil), tags...)
	})
}

// ReplacePreferences overwrites preferences with an externally validated value.
func (s *Store) ReplacePreferences(p Preferences) {
	s.replace(func(st *State) {
		st.Preferences = p
	})
}

func (s *Store) replace(apply func(*State)) {
	s.mu.Lock()
	old := s.state
	next := old
	apply(&next)
	s.state = next
	s.mu.Unlock()

	s.notify(old, next, nil)
}

func (s *Store) notify(old, next State, act Action) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(old, next, act)
	}
}

func actionName(act Action) string {
	switch act.(type) {
	case AddNote:
		return "add-note"
	case UpdateNote:
		return "update-note"
	case DeleteNote:
		return "delete-note"
	case RestoreNote:
		return "restore-note"
	case AddTag:
		return "add-tag"
	case UpdateTag:
		return "update-tag"
	case DeleteTag:
		return "delete-tag"
	case UpdatePreferences:
		return "update-preferences"
	case UpdateFilters:
		return "update-filters"
	case SelectNote:
		return "select-note"
	case ImportData:
		return "import-data"
	}
	return "unknown"
}
