package store

import "time"

type Stores struct {
	sessions *memorySessionStore
}

// NewStores builds the in-memory stores. Session state is never persisted.
func NewStores() *Stores {
	return &Stores{sessions: newMemorySessionStore(time.Now)}
}

func (s *Stores) Sessions() SessionStore {
	return s.sessions
}
