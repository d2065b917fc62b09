package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoredSession pairs a session with its server-side bookkeeping.
type StoredSession struct {
	ID        string
	CreatedAt time.Time
	CreatedBy string
	*Session
}

// Store holds the active sessions keyed by ID. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*StoredSession
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*StoredSession)}
}

// Add registers sess under a fresh ID and returns the stored entry.
// createdBy is the authenticated user when one is known, empty otherwise.
func (st *Store) Add(sess *Session, createdBy string) *StoredSession {
	stored := &StoredSession{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
		Session:   sess,
	}

	st.mu.Lock()
	st.sessions[stored.ID] = stored
	st.mu.Unlock()
	return stored
}

// Get returns the session stored under id
func (st *Store) Get(id string) (*StoredSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	stored, ok := st.sessions[id]
	return stored, ok
}

// Delete closes the session stored under id and removes it.
// It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	stored, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok {
		stored.Close()
	}
	return ok
}

// Len returns the number of active sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
