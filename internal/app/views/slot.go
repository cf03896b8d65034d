package views

import (
	"context"
	"sync"
)

// State is a view's renderable snapshot.
type State[T any] struct {
	Value   T
	Loaded  bool
	Loading bool
	Notice  string
}

// slot is one view's private result cell. Views never share slots.
type slot[T any] struct {
	mu    sync.Mutex
	state State[T]
}

func newSlot[T any](initial T) *slot[T] {
	return &slot[T]{state: State[T]{Value: initial}}
}

// begin marks a request in flight. It returns false when one already is,
// which is how a view refuses resubmission.
func (s *slot[T]) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Loading {
		return false
	}
	s.state.Loading = true
	return true
}

// finish replaces the value and notice and clears the loading flag.
func (s *slot[T]) finish(value T, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State[T]{
		Value:  value,
		Loaded: true,
		Notice: notice,
	}
}

// abandoned reports whether err came from ctx ending rather than from the backend.
// In that case the request is dropped: the previous value and notice stay and only
// the loading flag is cleared, so the next visit fetches again.
func (s *slot[T]) abandoned(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}

	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
	return true
}

func (s *slot[T]) snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
