package scene

import (
	"sync/atomic"

	"cogentcore.org/core/math32"
)

// nextResourceID provides process-unique resource ids.
var nextResourceID atomic.Uint64

// Resource is a renderable object owned by a [Generation]: a geometry, a
// material, a mesh, or a line. Dispose releases the resource's buffers;
// it is safe to call more than once, only the first call frees anything.
type Resource interface {
	// ResourceID returns the process-unique id assigned at creation.
	ResourceID() uint64

	// Dispose releases the resource. Idempotent.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool
}

// base carries the shared id/disposal bookkeeping for concrete resources.
type base struct {
	id       uint64
	disposed bool
}

func newBase() base {
	return base{id: nextResourceID.Add(1)}
}

func (b *base) ResourceID() uint64 { return b.id }
func (b *base) Disposed() bool     { return b.disposed }

// Geometry holds the vertex-level description of a box shape.
type Geometry struct {
	base
	Size math32.Vector3
}

// NewGeometry creates a box geometry of the given size.
func NewGeometry(size math32.Vector3) *Geometry {
	return &Geometry{base: newBase(), Size: size}
}

// Dispose releases the geometry's buffers.
func (g *Geometry) Dispose() { g.disposed = true }

// Material holds the display properties of a mesh.
type Material struct {
	base
	Color       string
	Opacity     float32
	Wireframe   bool
	Transparent bool
}

// NewMaterial creates an opaque material with the given color.
func NewMaterial(color string) *Material {
	return &Material{base: newBase(), Color: color, Opacity: 1}
}

// NewTranslucentMaterial creates a see-through material, used for the
// container volume and the holding-area floor.
func NewTranslucentMaterial(color string, opacity float32) *Material {
	return &Material{base: newBase(), Color: color, Opacity: opacity, Transparent: true}
}

// Dispose releases the material.
func (m *Material) Dispose() { m.disposed = true }

// Mesh is one renderable box instance: a geometry placed at a center with a
// material. Item meshes are pickable and carry the id of the item they
// render; decoration meshes (corner markers, holding-area floor) are not.
type Mesh struct {
	base
	Geometry *Geometry
	Material *Material

	// Center is the world-space center of the box.
	Center math32.Vector3

	// Bounds is the world-space axis-aligned bounding box, used by picking.
	Bounds math32.Box3

	// ItemID links the mesh to its item metadata. Empty for decorations.
	ItemID string

	// Pickable marks meshes that participate in pointer picking.
	Pickable bool

	// Highlighted is the hover highlight flag. Purely visual; it never
	// affects item data.
	Highlighted bool
}

// NewMesh creates a mesh centered at center. Bounds are derived from the
// geometry size.
func NewMesh(geom *Geometry, mat *Material, center math32.Vector3) *Mesh {
	m := &Mesh{base: newBase(), Geometry: geom, Material: mat, Center: center}
	m.Bounds.SetFromCenterAndSize(center, geom.Size)
	return m
}

// Dispose releases the mesh. The mesh's geometry and material are owned by
// the same generation and disposed through their own tracking entries.
func (m *Mesh) Dispose() {
	m.disposed = true
	m.Highlighted = false
	m.Pickable = false
}

// Line is a renderable polyline: the container wireframe, the six boundary
// rectangles, and the holding-area outline.
type Line struct {
	base
	Points []math32.Vector3
	Color  string
}

// NewLine creates a polyline through the given points.
func NewLine(color string, points ...math32.Vector3) *Line {
	return &Line{base: newBase(), Points: points, Color: color}
}

// Dispose releases the line's point buffer.
func (l *Line) Dispose() {
	l.disposed = true
	l.Points = nil
}
