package game

import (
	"sync"
	"time"
)

type BarrierState int

const (
	BarrierOpen BarrierState = iota
	BarrierResolved
	BarrierDiscarded
)

// BarrierResponse is one responder's submission, kept in arrival order.
type BarrierResponse struct {
	PlayerID string
	Action   NightAction
}

// Barrier collects night-step responses from a known set of expected
// responders and resolves exactly once, when all of them have answered
// or when Await's deadline force-resolves it with partial responses.
// Submissions are serialized by the barrier's own mutex, so concurrent
// senders can never double-count a responder or resolve the barrier
// twice.
type Barrier struct {
	mu        sync.Mutex
	state     BarrierState
	expected  map[string]bool
	responded map[string]bool
	responses []BarrierResponse
	done      chan []BarrierResponse

	// onSubmit runs for every accepted submission, outside night-step
	// sequencing. It is how the hunter's declaration is recorded the
	// instant it arrives.
	onSubmit func(playerID string, action NightAction)
}

// newBarrier builds a barrier for the given responder set. The caller
// guarantees the set is non-empty; the coordinator enforces the
// one-open-barrier-per-room rule.
func newBarrier(expected []string, onSubmit func(string, NightAction)) *Barrier {
	set := make(map[string]bool, len(expected))
	for _, id := range expected {
		set[id] = true
	}
	return &Barrier{
		state:     BarrierOpen,
		expected:  set,
		responded: make(map[string]bool),
		done:      make(chan []BarrierResponse, 1),
		onSubmit:  onSubmit,
	}
}

// Submit records one responder's action. It is idempotent: unknown
// responders, duplicate submissions and submissions after resolution are
// ignored, so duplicate network delivery is harmless. Returns whether
// the submission was accepted.
func (b *Barrier) Submit(playerID string, action NightAction) bool {
	b.mu.Lock()
	if b.state != BarrierOpen || !b.expected[playerID] || b.responded[playerID] {
		b.mu.Unlock()
		return false
	}
	b.responded[playerID] = true
	b.responses = append(b.responses, BarrierResponse{PlayerID: playerID, Action: action})

	complete := len(b.responded) == len(b.expected)
	var resolved []BarrierResponse
	if complete {
		b.state = BarrierResolved
		resolved = append([]BarrierResponse(nil), b.responses...)
	}
	hook := b.onSubmit
	b.mu.Unlock()

	if hook != nil {
		hook(playerID, action)
	}
	if complete {
		b.done <- resolved
	}
	return true
}

// Await blocks until the barrier resolves. A positive timeout bounds the
// wait: on expiry the barrier is force-resolved with whatever responses
// arrived, so an unresponsive required role cannot stall the round.
func (b *Barrier) Await(timeout time.Duration) []BarrierResponse {
	if timeout <= 0 {
		return <-b.done
	}
	select {
	case responses := <-b.done:
		return responses
	case <-time.After(timeout):
		return b.forceResolve()
	}
}

func (b *Barrier) forceResolve() []BarrierResponse {
	b.mu.Lock()
	if b.state == BarrierOpen {
		b.state = BarrierResolved
		responses := append([]BarrierResponse(nil), b.responses...)
		b.mu.Unlock()
		return responses
	}
	b.mu.Unlock()
	// A final submission resolved the barrier while the timeout fired.
	return <-b.done
}

// Discard abandons an open barrier. Await callers are released with the
// partial responses collected so far.
func (b *Barrier) Discard() {
	b.mu.Lock()
	if b.state != BarrierOpen {
		b.mu.Unlock()
		return
	}
	b.state = BarrierDiscarded
	responses := append([]BarrierResponse(nil), b.responses...)
	b.mu.Unlock()
	b.done <- responses
}

// State returns the barrier's lifecycle state.
func (b *Barrier) State() BarrierState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
