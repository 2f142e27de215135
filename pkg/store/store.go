// Package store persists lineage records and computed layouts.
//
// Records and layouts are keyed by the focal entity ID, so the server can
// serve the last layout for an entity without the client re-sending its
// record. Two backends are provided:
//   - [MemoryStore]: in-process maps, the default when no database is set up
//   - [MongoStore]: MongoDB collections, one document per entity
package store

import (
	"context"
	"errors"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// ErrNotFound is returned when nothing is stored for an entity.
var ErrNotFound = errors.New("not found")

// Store is the interface for record and layout persistence.
type Store interface {
	// SaveRecord stores rec under rec.Entity.ID, replacing any earlier record.
	SaveRecord(ctx context.Context, rec lineage.Record) error

	// Record returns the stored record for an entity or ErrNotFound.
	Record(ctx context.Context, entityID string) (lineage.Record, error)

	// SaveLayout stores l under l.EntityID, replacing any earlier layout.
	SaveLayout(ctx context.Context, l graph.Layout) error

	// Layout returns the stored layout for an entity or ErrNotFound.
	Layout(ctx context.Context, entityID string) (graph.Layout, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

var errMissingID = errors.New("missing entity id")
