package game

import (
	"sync"
	"time"
)

// TaskScheduler owns at most one pending timer per room. Scheduling a
// new task replaces the previous one, and Cancel drops it, so an early
// phase change (e.g. the host forcing a tally) can never race a stale
// deadline callback.
type TaskScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTaskScheduler() *TaskScheduler {
	return &TaskScheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule runs fn after d unless the room's task is cancelled or
// replaced first.
func (s *TaskScheduler) Schedule(roomCode string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.timers[roomCode]; ok {
		pending.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[roomCode] == t {
			delete(s.timers, roomCode)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[roomCode] = t
}

// Cancel stops the room's pending task, if any. Returns whether a task
// was pending.
func (s *TaskScheduler) Cancel(roomCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.timers[roomCode]
	if !ok {
		return false
	}
	pending.Stop()
	delete(s.timers, roomCode)
	return true
}
