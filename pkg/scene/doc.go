// Package scene builds and owns the renderable scene derived from a
// packing-result document.
//
// # Architecture
//
// The package is organized around generations: one [Generation] is the
// complete set of renderable resources (container decorations, one mesh per
// placed item, the holding area and one mesh per unpacked item) derived from
// exactly one document. Exactly one generation is live at a time; a new
// document produces a new generation and disposes the previous one.
//
// The pieces, leaf first:
//
//   - [EffectiveBounds]: the axis-aligned bounds of an item after rotation
//   - [PlaceUnpacked]: grid layout for items that did not fit the container
//   - [Lifecycle]: tracks every resource per generation and releases each
//     exactly once
//   - [Synchronizer]: the orchestration core that turns a document into the
//     live generation
//
// # Resource Ownership
//
// All resources created during a rebuild are tracked under a single
// generation handle. [Lifecycle.DisposeGeneration] releases everything in a
// generation and is idempotent; disposing an already-disposed or
// never-populated generation is a no-op. Nothing created during a rebuild
// survives past the matching dispose call.
//
// # Degradation
//
// Rebuilds are total: a missing container falls back to a documented default
// volume, malformed item entries are skipped with a diagnostic count, and
// out-of-bounds positions are clamped into the container rather than
// rejected. The whole document renders whatever is valid.
package scene
