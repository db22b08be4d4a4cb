package session

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/core/logger"
)

// Repository keeps sessions in memory keyed by user ID. Telegram delivers one
// update per user at a time through the router, so handlers may mutate the
// returned session without extra locking; the map itself is guarded.
type Repository struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewRepository creates an empty session store.
func NewRepository() *Repository {
	return &Repository{sessions: make(map[int64]*Session)}
}

// Get returns the session for a user, creating an idle one on first contact.
// The last-seen timestamp is refreshed on every call.
func (r *Repository) Get(userID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &Session{UserID: userID, State: StateIdle, Form: form.New()}
		r.sessions[userID] = s
	}
	s.LastSeen = time.Now()
	return s
}

// GetState reads the conversation state without creating a session.
func (r *Repository) GetState(userID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[userID]; ok {
		return string(s.State)
	}
	return string(StateIdle)
}

// InProgress reports whether the user has an active conversation.
func (r *Repository) InProgress(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return ok && s.State != StateIdle
}

// Remove drops the session entirely.
func (r *Repository) Remove(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Len reports the number of tracked sessions.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops sessions untouched since the deadline and returns how many
// were removed. An abandoned half-filled form is simply forgotten.
func (r *Repository) Evict(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.LastSeen.Before(olderThan) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor evicts stale sessions every interval until ctx is done.
// ttl <= 0 disables eviction.
func (r *Repository) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Evict(time.Now().Add(-ttl)); n > 0 {
					logger.FLOW.LogAttrs(ctx, slog.LevelInfo, "session.evict",
						slog.Int("count", n),
					)
				}
			}
		}
	}()
}
