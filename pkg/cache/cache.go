// Package cache stores laid-out graphs and rendered artifacts between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: disables caching
//
// Keys are content addressed. A [Keyer] derives them from the hash of the
// input record (for layouts) or of the layout (for artifacts) plus the
// options that change the output.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// TTLLayout is how long laid-out graphs stay cached.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is how long rendered SVG/PNG/DOT output stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	UnitX float64 `json:"unit_x"`
	UnitY float64 `json:"unit_y"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Selected string `json:"selected,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its input record.
	LayoutKey(recordHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(recordHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", recordHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
