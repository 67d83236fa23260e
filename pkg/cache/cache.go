// Package cache provides response and artifact caching for packview.
//
// Three backends implement the [Cache] interface: [FileCache] for CLI usage,
// [RedisCache] for the HTTP server, and [NullCache] to disable caching.
// Keys are generated through a [Keyer] so every consumer hashes the same
// inputs the same way; [ScopedKeyer] adds a namespace prefix for shared
// backends.
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached value classes.
const (
	// TTLPack is the lifetime of cached packing-service responses.
	TTLPack = 24 * time.Hour

	// TTLScene is the lifetime of cached scene exports.
	TTLScene = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of cached render artifacts (SVG, DOT).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SceneKeyOpts are the layout parameters that affect a built scene.
// Scenes built with different parameters cache separately.
type SceneKeyOpts struct {
	CellSize    float32
	ItemsPerRow int
}

// ArtifactKeyOpts are the render parameters that affect an output artifact.
type ArtifactKeyOpts struct {
	Format   string
	Width    float64
	Detailed bool
}

// Keyer generates cache keys. All keys embed a content hash so a changed
// input never collides with a stale entry.
type Keyer interface {
	// HTTPKey generates a key for raw HTTP response caching.
	HTTPKey(namespace, key string) string

	// PackKey generates a key for a packing-service response, keyed by the
	// request payload hash.
	PackKey(payloadHash string) string

	// SceneKey generates a key for a built scene, keyed by the source
	// document fingerprint and the layout parameters.
	SceneKey(fingerprint string, opts SceneKeyOpts) string

	// ArtifactKey generates a key for a render artifact, keyed by the scene
	// and the render parameters.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http:"+namespace, key)
}

// PackKey generates a key for a packing-service response.
func (k *DefaultKeyer) PackKey(payloadHash string) string {
	return hashKey("pack", payloadHash)
}

// SceneKey generates a key for a built scene.
func (k *DefaultKeyer) SceneKey(fingerprint string, opts SceneKeyOpts) string {
	return hashKey("scene", fingerprint, opts.CellSize, opts.ItemsPerRow)
}

// ArtifactKey generates a key for a render artifact.
func (k *DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts.Format, opts.Width, opts.Detailed)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
