// Package arena coordinates several assistants acting in turn on the same
// shared environment, propagating each recorded transition to every other
// actor so their own experience reflects moves they did not make themselves.
package arena

import (
	"fmt"
	"sync"

	"cyberxp/assistant"
	"cyberxp/xp"
)

// SharedArena owns a set of assistants that all observe (and some subset of
// which act upon) the same environment.
type SharedArena struct {
	mu      sync.Mutex
	actors  []*assistant.Assistant
	started map[*assistant.Assistant]bool
}

// NewSharedArena returns an arena with no actors yet.
func NewSharedArena() *SharedArena {
	return &SharedArena{started: map[*assistant.Assistant]bool{}}
}

// AddActor registers a, binding this arena as its ArenaNotifier.
func (s *SharedArena) AddActor(a *assistant.Assistant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors = append(s.actors, a)
	a.SetArena(s)
}

// MultiActor implements assistant.ArenaNotifier.
func (s *SharedArena) MultiActor() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors) > 1
}

// NewEpisode starts a fresh episode for every registered actor.
func (s *SharedArena) NewEpisode() error {
	s.mu.Lock()
	actors := append([]*assistant.Assistant(nil), s.actors...)
	s.started = map[*assistant.Assistant]bool{}
	s.mu.Unlock()

	for _, a := range actors {
		if err := a.StartEpisode(); err != nil {
			return fmt.Errorf("arena: starting episode: %w", err)
		}
		s.mu.Lock()
		s.started[a] = true
		s.mu.Unlock()
	}
	return nil
}

// NotifyTransition implements assistant.ArenaNotifier: it is called by the
// actor that just recorded t, and propagates t to every other registered
// actor so they can update their own view of the shared environment (and,
// if that view is now terminal for them, finalize their own episode).
// A transition that did not change state is not propagated: nothing
// happened that any other actor needs to learn from.
func (s *SharedArena) NotifyTransition(actor *assistant.Assistant, t xp.Transition) {
	if t.StartState == t.EndState {
		return
	}

	s.mu.Lock()
	others := make([]*assistant.Assistant, 0, len(s.actors))
	for _, a := range s.actors {
		if a == actor {
			continue
		}
		others = append(others, a)
	}
	s.mu.Unlock()

	for _, other := range others {
		s.mu.Lock()
		started := s.started[other]
		if !started {
			s.started[other] = true
		}
		s.mu.Unlock()

		if !started {
			_ = other.StartEpisode()
		}
		other.ObserveTransition(t)
	}
}
