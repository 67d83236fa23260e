package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several viewers share one cache backend (for example
// a shared redis instance) and need separate key spaces.
//
// Example usage:
//
//	// Session-specific keys on a shared backend
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// PackKey generates a prefixed key for a packing-service response.
func (k *ScopedKeyer) PackKey(payloadHash string) string {
	return k.prefix + k.inner.PackKey(payloadHash)
}

// SceneKey generates a prefixed key for a built scene.
func (k *ScopedKeyer) SceneKey(fingerprint string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(fingerprint, opts)
}

// ArtifactKey generates a prefixed key for a render artifact.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
