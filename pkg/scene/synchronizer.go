package scene

import (
	"sync"

	"cogentcore.org/core/math32"
	"github.com/charmbracelet/log"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/observability"
)

// minItemSize is the smallest renderable item dimension. Items whose wire
// form carries zero or negative components are raised to this size instead
// of being rejected.
const minItemSize float32 = 0.1

// Option configures a [Synchronizer].
type Option func(*Synchronizer)

// WithLogger sets the logger used for rebuild diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithCellSize overrides the holding-area grid cell size.
func WithCellSize(size float32) Option {
	return func(s *Synchronizer) { s.cellSize = size }
}

// WithItemsPerRow overrides the holding-area grid column count.
func WithItemsPerRow(n int) Option {
	return func(s *Synchronizer) { s.itemsPerRow = n }
}

// Synchronizer turns packing-result documents into live scene generations.
// It is the orchestration core: it drives [EffectiveBounds] and
// [PlaceUnpacked], creates every renderable resource through the lifecycle
// manager, and swaps the live generation atomically with disposing the
// previous one.
type Synchronizer struct {
	lifecycle   *Lifecycle
	logger      *log.Logger
	cellSize    float32
	itemsPerRow int

	mu      sync.Mutex
	current *Generation
	seq     uint64
}

// NewSynchronizer creates a synchronizer that tracks resources in lifecycle.
func NewSynchronizer(lifecycle *Lifecycle, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		lifecycle:   lifecycle,
		logger:      log.Default(),
		cellSize:    DefaultCellSize,
		itemsPerRow: DefaultItemsPerRow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the live generation, or nil before the first rebuild.
func (s *Synchronizer) Current() *Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Sync makes doc the live generation. If doc has the same content
// fingerprint as the current generation's source document, the current
// generation is returned unchanged and nothing is rebuilt. Otherwise the
// scene is rebuilt and the previous generation disposed; the swap is atomic
// with respect to [Synchronizer.Current] readers, so the render loop never
// observes a half-disposed scene.
func (s *Synchronizer) Sync(doc *document.Document) *Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && doc != nil && s.current.Fingerprint == doc.Fingerprint() {
		return s.current
	}

	gen := s.rebuild(doc)
	if s.current != nil {
		s.lifecycle.DisposeGeneration(s.current.Handle)
	}
	s.current = gen
	return gen
}

// Rebuild builds a fresh generation from doc without consulting the
// fingerprint, disposes the previous generation, and makes the new one live.
// Rebuild is total: it degrades on malformed input rather than failing.
func (s *Synchronizer) Rebuild(doc *document.Document) *Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.rebuild(doc)
	if s.current != nil {
		s.lifecycle.DisposeGeneration(s.current.Handle)
	}
	s.current = gen
	return gen
}

// Reset disposes the live generation, leaving no scene mounted.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.lifecycle.DisposeGeneration(s.current.Handle)
		s.current = nil
	}
}

// rebuild is the build step. Caller holds s.mu.
func (s *Synchronizer) rebuild(doc *document.Document) *Generation {
	if doc == nil {
		doc = &document.Document{Container: fallbackContainer()}
	}

	s.seq++
	observability.Scene().OnRebuildStart(doc.Fingerprint(), len(doc.Items), len(doc.Unpacked))

	handle := s.lifecycle.BeginGeneration()
	gen := &Generation{
		Handle:      handle,
		Seq:         s.seq,
		Fingerprint: doc.Fingerprint(),
		Container:   ensureContainer(doc.Container),
		Metadata:    make(map[string]ItemMetadata),
		Stats:       document.ComputeStats(doc),
	}

	s.buildContainer(gen)
	s.buildPlacedItems(gen, doc.Items)
	s.buildUnpackedItems(gen, doc.Unpacked)

	s.logger.Debug("scene rebuilt",
		"seq", gen.Seq,
		"placed", gen.Stats.PackedCount,
		"unpacked", gen.Stats.UnpackedCount,
		"skipped", gen.Diagnostics.SkippedItems,
		"clamped", gen.Diagnostics.ClampedItems,
		"resources", s.lifecycle.Count(handle))
	observability.Scene().OnRebuildComplete(gen.Seq, s.lifecycle.Count(handle),
		gen.Diagnostics.SkippedItems, gen.Diagnostics.ClampedItems)

	return gen
}

// buildContainer creates the container representation: a translucent volume,
// a wireframe outline, eight corner markers, and six individually colored
// boundary rectangles. The container's minimum corner is the coordinate
// origin, so its center sits at half its size.
func (s *Synchronizer) buildContainer(gen *Generation) {
	size := gen.Container.Size()
	center := size.MulScalar(0.5)

	volGeom := NewGeometry(size)
	volMat := NewTranslucentMaterial(gen.Container.Color, containerOpacity)
	gen.Volume = NewMesh(volGeom, volMat, center)
	s.track(gen.Handle, volGeom, volMat, gen.Volume)

	corners := boxCorners(math32.Box3{Min: math32.Vector3{}, Max: size})
	gen.Wireframe = wireframeOutline(corners)
	s.track(gen.Handle, gen.Wireframe)

	markerGeom := NewGeometry(math32.Vec3(cornerMarkerSize, cornerMarkerSize, cornerMarkerSize))
	markerMat := NewMaterial(cornerMarkerColor)
	s.track(gen.Handle, markerGeom, markerMat)
	for _, c := range corners {
		marker := NewMesh(markerGeom, markerMat, c)
		gen.CornerMarkers = append(gen.CornerMarkers, marker)
		s.track(gen.Handle, marker)
	}

	for i, rect := range boundaryRects(size) {
		line := NewLine(boundaryColors[i], rect...)
		gen.BoundaryRects = append(gen.BoundaryRects, line)
		s.track(gen.Handle, line)
	}
}

// buildPlacedItems creates one pickable mesh per well-formed placed item.
// Malformed entries are skipped and counted; out-of-bounds positions are
// clamped so no rendered item protrudes outside the container.
func (s *Synchronizer) buildPlacedItems(gen *Generation, items []document.PlacedItem) {
	containerSize := gen.Container.Size()

	for _, it := range items {
		if it.MissingDimensions || it.MissingPosition {
			gen.Diagnostics.SkippedItems++
			s.logger.Warn("skipping malformed item", "id", it.ID, "name", it.Name)
			continue
		}

		dims, defaulted := sanitizeSize(it.Dimensions)
		if defaulted {
			gen.Diagnostics.DefaultedItems++
		}

		bounds := EffectiveBounds(dims, it.Rotation)
		pos, clamped := clampIntoContainer(it.Position, bounds, containerSize)
		if clamped {
			gen.Diagnostics.ClampedItems++
			s.logger.Debug("clamped out-of-bounds item",
				"id", it.ID, "stored", it.Position, "clamped", pos)
		}

		center := pos.Add(bounds.MulScalar(0.5))
		geom := NewGeometry(bounds)
		mat := NewMaterial(it.Color)
		mesh := NewMesh(geom, mat, center)
		mesh.ItemID = it.ID
		mesh.Pickable = true

		gen.Items = append(gen.Items, mesh)
		gen.Metadata[it.ID] = ItemMetadata{
			ID:         it.ID,
			Name:       it.Name,
			Dimensions: dims,
			Color:      it.Color,
			Detail:     Placed{Position: it.Position, Rotation: it.Rotation},
		}
		s.track(gen.Handle, geom, mat, mesh)
	}
}

// buildUnpackedItems creates the holding area and one mesh per unpacked item.
// Nothing is created when the document has no renderable unpacked items.
func (s *Synchronizer) buildUnpackedItems(gen *Generation, items []document.UnpackedItem) {
	renderable := make([]document.UnpackedItem, 0, len(items))
	for _, it := range items {
		if it.MissingDimensions {
			gen.Diagnostics.SkippedItems++
			s.logger.Warn("skipping malformed unpacked item", "id", it.ID, "name", it.Name)
			continue
		}
		it.Dimensions, _ = sanitizeSize(it.Dimensions)
		renderable = append(renderable, it)
	}
	if len(renderable) == 0 {
		return
	}

	area := HoldingAreaFor(gen.Container, s.cellSize, s.itemsPerRow)
	gen.Area = &area

	floorGeom := NewGeometry(math32.Vec3(area.Size.X, 0.01, area.Size.Z))
	floorMat := NewTranslucentMaterial(holdingAreaColor, areaFloorOpacity)
	gen.AreaFloor = NewMesh(floorGeom, floorMat,
		area.Origin.Add(math32.Vec3(area.Size.X/2, 0, area.Size.Z/2)))
	gen.AreaOutline = wireframeOutline(boxCorners(area.Bounds()))
	s.track(gen.Handle, floorGeom, floorMat, gen.AreaFloor, gen.AreaOutline)

	for _, p := range PlaceUnpacked(renderable, area, s.cellSize, s.itemsPerRow) {
		center := p.Position.Add(p.Item.Dimensions.MulScalar(0.5))
		geom := NewGeometry(p.Item.Dimensions)
		mat := NewMaterial(p.Item.Color)
		mesh := NewMesh(geom, mat, center)
		mesh.ItemID = p.Item.ID
		mesh.Pickable = true

		gen.Items = append(gen.Items, mesh)
		gen.Metadata[p.Item.ID] = ItemMetadata{
			ID:         p.Item.ID,
			Name:       p.Item.Name,
			Dimensions: p.Item.Dimensions,
			Color:      p.Item.Color,
			Detail:     Unplaced{Reason: p.Item.Reason},
		}
		s.track(gen.Handle, geom, mat, mesh)
	}
}

func (s *Synchronizer) track(h Handle, resources ...Resource) {
	for _, r := range resources {
		s.lifecycle.Track(h, r)
	}
}

func fallbackContainer() document.Container {
	return document.Container{
		Width:  document.FallbackWidth,
		Height: document.FallbackHeight,
		Depth:  document.FallbackDepth,
		Color:  document.DefaultContainerColor,
	}
}

func ensureContainer(c document.Container) document.Container {
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return fallbackContainer()
	}
	if c.Color == "" {
		c.Color = document.DefaultContainerColor
	}
	return c
}

// sanitizeSize raises non-positive dimension components to the minimum
// renderable size, reporting whether anything changed.
func sanitizeSize(size math32.Vector3) (math32.Vector3, bool) {
	out := size
	changed := false
	if out.X <= 0 {
		out.X = minItemSize
		changed = true
	}
	if out.Y <= 0 {
		out.Y = minItemSize
		changed = true
	}
	if out.Z <= 0 {
		out.Z = minItemSize
		changed = true
	}
	return out, changed
}

// clampIntoContainer pulls pos back so pos+bounds stays inside the container
// component-wise, flooring at the origin. Reports whether pos moved.
func clampIntoContainer(pos, bounds, container math32.Vector3) (math32.Vector3, bool) {
	clamped := math32.Vec3(
		math32.Max(0, math32.Min(pos.X, container.X-bounds.X)),
		math32.Max(0, math32.Min(pos.Y, container.Y-bounds.Y)),
		math32.Max(0, math32.Min(pos.Z, container.Z-bounds.Z)),
	)
	return clamped, clamped != pos
}

// boxCorners returns the eight corners of a box in a fixed order:
// the four bottom corners counterclockwise, then the four top corners.
func boxCorners(b math32.Box3) []math32.Vector3 {
	return []math32.Vector3{
		math32.Vec3(b.Min.X, b.Min.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Max.Y, b.Max.Z),
	}
}

// wireframeOutline builds a single polyline tracing all twelve edges of a
// box from its eight corners (as produced by boxCorners).
func wireframeOutline(c []math32.Vector3) *Line {
	return NewLine(wireframeColor,
		// bottom loop
		c[0], c[1], c[2], c[3], c[0],
		// verticals with top loop
		c[4], c[5], c[1], c[5], c[6], c[2], c[6], c[7], c[3], c[7], c[4],
	)
}

// boundaryRects returns the six face rectangles of the container volume,
// ordered +X, -X, +Y, -Y, +Z, -Z to match boundaryColors.
func boundaryRects(size math32.Vector3) [6][]math32.Vector3 {
	w, h, d := size.X, size.Y, size.Z
	return [6][]math32.Vector3{
		{math32.Vec3(w, 0, 0), math32.Vec3(w, h, 0), math32.Vec3(w, h, d), math32.Vec3(w, 0, d), math32.Vec3(w, 0, 0)},
		{math32.Vec3(0, 0, 0), math32.Vec3(0, h, 0), math32.Vec3(0, h, d), math32.Vec3(0, 0, d), math32.Vec3(0, 0, 0)},
		{math32.Vec3(0, h, 0), math32.Vec3(w, h, 0), math32.Vec3(w, h, d), math32.Vec3(0, h, d), math32.Vec3(0, h, 0)},
		{math32.Vec3(0, 0, 0), math32.Vec3(w, 0, 0), math32.Vec3(w, 0, d), math32.Vec3(0, 0, d), math32.Vec3(0, 0, 0)},
		{math32.Vec3(0, 0, d), math32.Vec3(w, 0, d), math32.Vec3(w, h, d), math32.Vec3(0, h, d), math32.Vec3(0, 0, d)},
		{math32.Vec3(0, 0, 0), math32.Vec3(w, 0, 0), math32.Vec3(w, h, 0), math32.Vec3(0, h, 0), math32.Vec3(0, 0, 0)},
	}
}
