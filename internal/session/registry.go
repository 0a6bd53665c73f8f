// Package session tracks one gesture.Session per client stream.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex // serializes frames for this stream
	sess     *gesture.Session
	created  time.Time
	lastSeen time.Time
}

// Info describes a live session.
type Info struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created_at"`
	LastSeen time.Time `json:"last_seen"`
}

// Registry owns the per-stream sessions. Each session keeps its own smoothing
// history, and frames for the same session are processed one at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create starts a new session and returns its ID.
func (r *Registry) Create() string {
	id := uuid.New().String()
	r.Ensure(id)
	return id
}

// Ensure returns true if a session with id already existed, creating it
// otherwise. It lets clients pick their own stream IDs.
func (r *Registry) Ensure(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return true
	}
	now := r.now()
	r.sessions[id] = &entry{
		sess:     gesture.NewSession(),
		created:  now,
		lastSeen: now,
	}
	return false
}

// Get returns information about a session.
func (r *Registry) Get(id string) (Info, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return Info{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{ID: id, Created: e.created, LastSeen: e.lastSeen}, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Process classifies one frame for the session. Calls for the same session
// are serialized; different sessions run independently.
func (r *Registry) Process(id string, hand *detector.HandLandmarks) (gesture.Result, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return gesture.NoGesture, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = r.now()
	return e.sess.Process(hand)
}

// Sweep removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
