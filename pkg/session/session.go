// Package session stores per-viewer selection state.
//
// A [Session] records which node of an entity's lineage graph a viewer has
// selected, so the detail panel survives page reloads and CLI restarts.
// Backends:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [RedisStore]: shared across server instances, expiry handled by Redis
//   - [FileStore]: JSON files, used by the CLI browser
//
// # Usage
//
//	sess := session.New("orders", session.DefaultTTL)
//	sess.Select(lineage.SelectedNode{ID: "node-orders-0", Name: "orders", Type: "table"})
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if sess == nil {
//	    // not found or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 24 * time.Hour
)

// Session is the selection state of one viewer on one entity's graph.
// Revision is the layout revision the selection was made on.
type Session struct {
	ID        string                `json:"id"`
	EntityID  string                `json:"entity_id"`
	Selected  *lineage.SelectedNode `json:"selected,omitempty"`
	Revision  string                `json:"revision,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// New creates an unselected session with a random ID.
func New(entityID string, ttl time.Duration) *Session {
	return newWithID(uuid.NewString(), entityID, ttl)
}

// ForEntity creates a session whose ID is derived from the entity ID, so
// repeated runs of the CLI browser find the same session.
func ForEntity(entityID string, ttl time.Duration) *Session {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("lineage:"+entityID)).String()
	return newWithID(id, entityID, ttl)
}

func newWithID(id, entityID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		EntityID:  entityID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsOpen reports whether a node is selected.
func (s *Session) IsOpen() bool { return s.Selected != nil }

// Select records n as the selected node and extends the session.
func (s *Session) Select(n lineage.SelectedNode) {
	s.Selected = &n
	s.touch()
}

// Clear returns the session to unselected.
func (s *Session) Clear() {
	s.Selected = nil
	s.Revision = ""
	s.touch()
}

// Current reports whether the selection still belongs to the layout with
// the given revision. An unselected session is always current.
func (s *Session) Current(revision string) bool {
	return s.Selected == nil || s.Revision == revision
}

// Apply records a selection transition. It matches lineage.SelectFunc, so a
// session can follow a lineage.Selection directly.
func (s *Session) Apply(isOpen bool, n lineage.SelectedNode) {
	if isOpen {
		s.Select(n)
		return
	}
	s.Clear()
}

func (s *Session) touch() {
	now := time.Now()
	ttl := s.ExpiresAt.Sub(s.UpdatedAt)
	s.UpdatedAt = now
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
