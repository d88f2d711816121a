package core

import (
	"sync"
	"time"
)

// SignalKind names a process-wide event crossing the core boundary. These are
// the only coupling points to the surrounding UI layer.
type SignalKind string

const (
	SignalStorageError    SignalKind = "storage-error"
	SignalExternalChange  SignalKind = "external-change"
	SignalInstallAvail    SignalKind = "install-available"
	SignalAppInstalled    SignalKind = "app-installed"
	SignalUpdateAvailable SignalKind = "update-available"
	SignalOnlineStatus    SignalKind = "online-status-changed"
)

// Signal is a process-wide notification. Terminal storage failures travel
// through this channel instead of being thrown past the core boundary.
type Signal struct {
	Kind    SignalKind
	Key     string
	Message string
	Err     error
	Online  bool
	At      time.Time
}

// Signals is a small synchronous fan-out bus.
type Signals struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Signal)
}

// NewSignals creates an empty bus.
func NewSignals() *Signals {
	return &Signals{subs: make(map[int]func(Signal))}
}

// Subscribe registers a listener and returns its cancel function.
func (s *Signals) Subscribe(fn func(Signal)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Notify delivers the signal to every listener synchronously.
func (s *Signals) Notify(sig Signal) {
	if sig.At.IsZero() {
		sig.At = time.Now()
	}

	s.mu.Lock()
	subs := make([]func(Signal), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sig)
	}
}
