package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bingen-booking/internal/models"
)

// Store keeps active wizard sessions in memory. Sessions are ephemeral
// drafts, so losing them on restart is acceptable; confirmed bookings live
// in the database.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a fresh session for a venue.
func (st *Store) Create(venue models.Venue) *Session {
	sess := newSession(uuid.NewString(), venue)

	st.mu.Lock()
	st.sessions[sess.SessionID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the session if it exists and has not expired.
func (st *Store) Get(sessionID string) (*Session, bool) {
	st.mu.RLock()
	sess, ok := st.sessions[sessionID]
	st.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if st.expired(sess) {
		st.Delete(sessionID)
		return nil, false
	}
	return sess, true
}

func (st *Store) Delete(sessionID string) {
	st.mu.Lock()
	delete(st.sessions, sessionID)
	st.mu.Unlock()
}

// Len reports the number of live sessions, counting expired ones not yet
// swept.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on an interval until the context is cancelled.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.Sweep()
			}
		}
	}()
}

func (st *Store) expired(sess *Session) bool {
	sess.mu.Lock()
	last := sess.LastActive
	sess.mu.Unlock()
	return st.now().Sub(last) > st.ttl
}
