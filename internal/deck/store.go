package deck

import "sync"

// Listener receives the new state after every applied command.
type Listener func(State)

// Store holds the current state and serializes command application.
// Commands are applied one at a time; listeners observe each resulting state
// in order.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewStore creates a store seeded with the given initial state.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current state. The returned value must be treated as
// immutable; Apply never mutates collections in place.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener for state changes. Listeners are invoked
// synchronously from Dispatch, after the state has been swapped.
func (s *Store) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Dispatch applies a command and returns the resulting state.
func (s *Store) Dispatch(command Command) State {
	s.mu.Lock()
	s.state = Apply(s.state, command)
	state := s.state
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
	return state
}
