package persist

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_ReplacesPendingTask(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		s.Schedule("k", 20*time.Millisecond, func() { fired.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("burst fired %d times", got)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("k", 20*time.Millisecond, func() { fired.Add(1) })

	if !s.Cancel("k") {
		t.Error("Cancel should report a pending task")
	}
	if s.Cancel("k") {
		t.Error("second Cancel should find nothing")
	}

	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("cancelled task fired")
	}
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var a, b atomic.Int32
	s.Schedule("a", 10*time.Millisecond, func() { a.Add(1) })
	s.Schedule("b", 10*time.Millisecond, func() { b.Add(1) })
	s.Cancel("a")

	time.Sleep(60 * time.Millisecond)
	if a.Load() != 0 || b.Load() != 1 {
		t.Errorf("a=%d b=%d", a.Load(), b.Load())
	}
}

func TestScheduler_StopRefusesFurtherWork(t *testing.T) {
	s := newScheduler()

	var fired atomic.Int32
	s.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })
	s.Stop()
	s.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("task fired after Stop")
	}
	if len(s.Pending()) != 0 {
		t.Errorf("pending after Stop: %v", s.Pending())
	}
}
