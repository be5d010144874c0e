package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/helper"
)

// Store keeps sessions in memory, keyed by id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// New creates a session with a fresh id.
func (st *Store) New() *Session {
	return st.GetOrCreate(helper.GenerateUUID())
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		st.lastSeen[id] = st.now()
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating it on first use. An empty
// id gets a generated one.
func (st *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = helper.GenerateUUID()
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = newSession(id)
		st.sessions[id] = s
	}
	st.lastSeen[id] = st.now()
	return s
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	delete(st.lastSeen, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict drops sessions not used for longer than idle and returns how many
// were removed.
func (st *Store) Evict(idle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := st.now().Add(-idle)
	n := 0
	for id, seen := range st.lastSeen {
		if seen.Before(cutoff) {
			delete(st.sessions, id)
			delete(st.lastSeen, id)
			n++
		}
	}
	return n
}

// EvictIdle runs Evict every interval until ctx is done. A non-positive idle
// disables eviction.
func (st *Store) EvictIdle(ctx context.Context, idle, interval time.Duration) {
	if idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Evict(idle); n > 0 {
				log.Debug().Int("evicted", n).Int("sessions", st.Len()).Msg("Evicted idle sessions")
			}
		}
	}
}
