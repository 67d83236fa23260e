// Package picking converts pointer coordinates into item hits. A pick casts
// a ray from the camera through the pointer position and tests it against
// the pickable meshes of the current scene generation. Hits are resolved to
// the nearest intersection along the ray; item ids break exact ties so the
// result is deterministic for overlapping boxes.
package picking

import (
	"sort"

	"cogentcore.org/core/math32"
	"github.com/charmbracelet/log"

	"github.com/binpack3d/packview/pkg/observability"
	"github.com/binpack3d/packview/pkg/scene"
	"github.com/binpack3d/packview/pkg/scene/camera"
)

// Hit describes one picked item.
type Hit struct {
	// ItemID is the id of the picked item.
	ItemID string

	// Metadata is the item's side-table record.
	Metadata scene.ItemMetadata

	// Point is the world-space ray entry point on the item's bounds.
	Point math32.Vector3

	// Distance is the ray distance from the camera to Point.
	Distance float32
}

// Option configures a [Service].
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service performs pointer picking against scene generations.
type Service struct {
	logger *log.Logger
}

// NewService creates a picking service.
func NewService(opts ...Option) *Service {
	s := &Service{logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RayFrom builds the world-space pick ray for a pointer position.
// nx and ny are normalized device coordinates in [-1, 1], with ny positive
// toward the top of the viewport. aspect is viewport width over height.
//
// In perspective mode the ray fans out from the camera position through the
// view frustum. In the axis modes rays are parallel to the view direction
// and the pointer offsets the ray origin across the orthographic plane.
func RayFrom(cam camera.State, nx, ny, aspect float32) math32.Ray {
	forward := cam.Forward()

	// Looking straight down (or up) leaves the world up vector degenerate.
	upRef := math32.Vec3(0, 1, 0)
	if math32.Abs(forward.Y) > 0.999 {
		upRef = math32.Vec3(0, 0, -1)
	}
	right := forward.Cross(upRef).Normal()
	up := right.Cross(forward)

	if cam.Mode == camera.Perspective {
		halfTan := math32.Tan(math32.DegToRad(cam.FOV / 2))
		dir := forward.
			Add(right.MulScalar(nx * halfTan * aspect)).
			Add(up.MulScalar(ny * halfTan)).
			Normal()
		return math32.Ray{Origin: cam.Position, Dir: dir}
	}

	origin := cam.Position.
		Add(right.MulScalar(nx * cam.OrthoHalf * aspect)).
		Add(up.MulScalar(ny * cam.OrthoHalf))
	return math32.Ray{Origin: origin, Dir: forward}
}

// PointerFor returns the normalized pointer coordinates whose pick ray
// passes through the given world point. It is the inverse of [RayFrom].
// ok is false when the point is behind the camera in perspective mode or
// the orthographic extent is degenerate.
func PointerFor(cam camera.State, point math32.Vector3, aspect float32) (nx, ny float32, ok bool) {
	forward := cam.Forward()
	upRef := math32.Vec3(0, 1, 0)
	if math32.Abs(forward.Y) > 0.999 {
		upRef = math32.Vec3(0, 0, -1)
	}
	right := forward.Cross(upRef).Normal()
	up := right.Cross(forward)

	rel := point.Sub(cam.Position)
	if cam.Mode == camera.Perspective {
		depth := rel.Dot(forward)
		if depth <= 0 {
			return 0, 0, false
		}
		halfTan := math32.Tan(math32.DegToRad(cam.FOV / 2))
		return rel.Dot(right) / (depth * halfTan * aspect), rel.Dot(up) / (depth * halfTan), true
	}

	if cam.OrthoHalf <= 0 {
		return 0, 0, false
	}
	return rel.Dot(right) / (cam.OrthoHalf * aspect), rel.Dot(up) / cam.OrthoHalf, true
}

// Pick casts a ray through the pointer position and returns the nearest
// item hit. ok is false when the pointer is over empty space or the
// generation is nil.
func (s *Service) Pick(gen *scene.Generation, cam camera.State, nx, ny, aspect float32) (Hit, bool) {
	if gen == nil {
		return Hit{}, false
	}

	ray := RayFrom(cam, nx, ny, aspect)

	var hits []Hit
	for _, m := range gen.PickableMeshes() {
		pt, ok := ray.IntersectBox(m.Bounds)
		if !ok {
			continue
		}
		md, _ := gen.MetadataFor(m)
		hits = append(hits, Hit{
			ItemID:   m.ItemID,
			Metadata: md,
			Point:    pt,
			Distance: pt.DistanceTo(ray.Origin),
		})
	}
	if len(hits) == 0 {
		observability.Scene().OnPick(false)
		return Hit{}, false
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ItemID < hits[j].ItemID
	})

	observability.Scene().OnPick(true)
	return hits[0], true
}

// Hover picks and applies the hover highlight in one step: the hit item's
// mesh is highlighted and every other highlight is cleared. A miss clears
// all highlights.
func (s *Service) Hover(gen *scene.Generation, cam camera.State, nx, ny, aspect float32) (Hit, bool) {
	hit, ok := s.Pick(gen, cam, nx, ny, aspect)
	if gen == nil {
		return hit, ok
	}
	if !ok {
		gen.ClearHighlights()
		return Hit{}, false
	}
	gen.Highlight(hit.ItemID)
	return hit, true
}
