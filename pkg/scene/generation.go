package scene

import (
	"github.com/binpack3d/packview/pkg/document"
)

// Face colors for the six container boundary rectangles, used for
// out-of-bounds diagnostics. Order: +X, -X, +Y, -Y, +Z, -Z.
var boundaryColors = [6]string{
	"#FF0000", "#8B0000",
	"#00FF00", "#006400",
	"#0000FF", "#00008B",
}

// Decoration colors.
const (
	wireframeColor    = "#333333"
	cornerMarkerColor = "#FFD700"
	holdingAreaColor  = "#909090"

	containerOpacity = 0.15
	areaFloorOpacity = 0.10

	// cornerMarkerSize is the edge length of the small cubes rendered at
	// the container's eight corners.
	cornerMarkerSize float32 = 0.3
)

// Diagnostics counts the recoverable problems encountered during a rebuild.
// None of these are fatal; the rest of the document still renders.
type Diagnostics struct {
	// SkippedItems counts entries dropped for missing dimensions or position.
	SkippedItems int

	// ClampedItems counts placed items whose stored position was pulled
	// back inside the container.
	ClampedItems int

	// DefaultedItems counts items whose non-positive dimensions were raised
	// to the minimum renderable size.
	DefaultedItems int
}

// Generation is one complete, disposable set of renderable objects derived
// from one packing-result document. All of its resources are tracked under
// Handle and released together by the owning [Lifecycle].
type Generation struct {
	// Handle identifies this generation in the lifecycle manager.
	Handle Handle

	// Seq is a monotonic rebuild counter assigned by the synchronizer.
	Seq uint64

	// Fingerprint is the content hash of the source document.
	Fingerprint string

	// Container is the (possibly fallback) container that was rendered.
	Container document.Container

	// Area is the holding-area geometry, nil when the document has no
	// renderable unpacked items.
	Area *HoldingArea

	// Container decorations.
	Volume        *Mesh    // translucent container volume
	Wireframe     *Line    // container outline
	CornerMarkers []*Mesh  // eight corner cubes
	BoundaryRects []*Line  // six individually colored face rectangles

	// Holding-area decorations, nil/empty when Area is nil.
	AreaFloor   *Mesh
	AreaOutline *Line

	// Items holds one pickable mesh per rendered item, placed items first,
	// then unpacked items in document order.
	Items []*Mesh

	// Metadata is the typed side table keyed by item id, consumed by
	// picking and tooltips.
	Metadata map[string]ItemMetadata

	// Diagnostics are the recoverable-problem counts from the rebuild.
	Diagnostics Diagnostics

	// Stats is the document summary for UI display.
	Stats document.Stats
}

// MetadataFor returns the metadata record for an item mesh.
func (g *Generation) MetadataFor(m *Mesh) (ItemMetadata, bool) {
	md, ok := g.Metadata[m.ItemID]
	return md, ok
}

// PickableMeshes returns the meshes that participate in pointer picking.
// Container and holding-area decorations are excluded.
func (g *Generation) PickableMeshes() []*Mesh {
	out := make([]*Mesh, 0, len(g.Items))
	for _, m := range g.Items {
		if m.Pickable && !m.Disposed() {
			out = append(out, m)
		}
	}
	return out
}

// ClearHighlights removes the hover highlight from every item mesh.
func (g *Generation) ClearHighlights() {
	for _, m := range g.Items {
		m.Highlighted = false
	}
}

// Highlight marks exactly the mesh rendering itemID as highlighted and
// clears the flag on all others. An unknown or empty id clears everything.
func (g *Generation) Highlight(itemID string) {
	for _, m := range g.Items {
		m.Highlighted = itemID != "" && m.ItemID == itemID
	}
}
