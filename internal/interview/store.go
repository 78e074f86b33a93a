package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/logger"
)

// Store is the concurrency-safe registry of live sessions. Session lifetimes
// are short relative to lock hold time, so a single mutex suffices.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Add registers the session under a fresh unique id and returns it.
func (st *Store) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get resolves the session id, failing with ErrSessionNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes and cancels the session. Deleting an unknown id is a no-op,
// so the operation is idempotent.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok {
		s.cancel()
		st.logger.Debug("session removed", zap.String(logger.FieldSession, id))
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// EvictIdle removes sessions whose last activity is older than maxIdle and
// returns how many were evicted.
func (st *Store) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-maxIdle)

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.cancel()
		st.logger.Info("idle session evicted",
			zap.String(logger.FieldSession, s.ID),
			zap.Duration("max_idle", maxIdle),
		)
	}

	return len(stale)
}
