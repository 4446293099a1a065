package store

import (
	"context"
	"sync"
	"time"

	"voyager.app/generator/internal/model"
)

type sessionEntry struct {
	session *model.Session
	// watchers are cancelled on delete, keyed by a per-entry sequence.
	watchers map[uint64]context.CancelFunc
	busy     bool
}

type memorySessionStore struct {
	now      func() time.Time
	sessions map[int64]*sessionEntry
	mu       sync.Mutex
	seq      uint64
}

func newMemorySessionStore(now func() time.Time) *memorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &memorySessionStore{now: now, sessions: make(map[int64]*sessionEntry)}
}

func (s *memorySessionStore) Create(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := session.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.sessions[stored.ID] = &sessionEntry{session: stored, watchers: make(map[uint64]context.CancelFunc)}

	session.CreatedAt = stored.CreatedAt
	session.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, id int64) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.session.Clone(), nil
}

func (s *memorySessionStore) Update(ctx context.Context, id int64, fn func(*model.Session) error) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	draft := entry.session.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	draft.ID = entry.session.ID
	draft.CreatedAt = entry.session.CreatedAt
	draft.UpdatedAt = s.now()
	entry.session = draft
	return draft.Clone(), nil
}

func (s *memorySessionStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	for _, cancel := range entry.watchers {
		cancel()
	}
	return nil
}

func (s *memorySessionStore) Acquire(ctx context.Context, id int64) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if entry.busy {
		return nil, ErrSessionBusy
	}
	entry.busy = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			entry.busy = false
			s.mu.Unlock()
		})
	}, nil
}

func (s *memorySessionStore) Bind(ctx context.Context, id int64) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, nil, ErrNotFound
	}

	bound, cancel := context.WithCancel(ctx)
	s.seq++
	key := s.seq
	entry.watchers[key] = cancel

	return bound, func() {
		cancel()
		s.mu.Lock()
		delete(entry.watchers, key)
		s.mu.Unlock()
	}, nil
}

func (s *memorySessionStore) CancelWatchers(ctx context.Context, id int64) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	var cancels []context.CancelFunc
	if ok {
		for _, cancel := range entry.watchers {
			cancels = append(cancels, cancel)
		}
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	for _, cancel := range cancels {
		cancel()
	}
	return nil
}

func (s *memorySessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
