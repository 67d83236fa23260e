// Package camera computes camera placement for the packing viewer's four
// view modes. The controller is stateless: it derives a full [State] from
// the container, the holding-area visibility, and the requested mode, and
// is re-invoked when the container changes (new document) or the user
// switches modes. It is never invoked mid-frame.
package camera

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/scene"
)

// ViewMode selects one of the four camera framing presets.
type ViewMode int

const (
	// Perspective is the free-orbit view above and in front of the scene.
	Perspective ViewMode = iota

	// Top looks straight down the Y axis.
	Top

	// Front looks down the Z axis.
	Front

	// Side looks down the X axis.
	Side
)

var viewModeNames = map[ViewMode]string{
	Perspective: "perspective",
	Top:         "top",
	Front:       "front",
	Side:        "side",
}

// String returns the lowercase mode name.
func (m ViewMode) String() string {
	if s, ok := viewModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// ParseViewMode converts a mode name to a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	for m, name := range viewModeNames {
		if name == s {
			return m, nil
		}
	}
	return Perspective, fmt.Errorf("invalid view mode: %s (must be 'perspective', 'top', 'front', or 'side')", s)
}

// State is the complete camera description consumed by the render loop and
// by picking. It is only ever produced by [Controller.Frame]; nothing else
// mutates it.
type State struct {
	Mode     ViewMode
	Position math32.Vector3
	Target   math32.Vector3

	// OrbitEnabled is true only in Perspective mode.
	OrbitEnabled bool

	// PanEnabled is retained in every mode.
	PanEnabled bool

	// FOV is the vertical field of view in degrees (Perspective only).
	FOV float32

	// OrthoHalf is the half-height of the orthographic view volume
	// (axis modes only). Picking uses it to offset ray origins.
	OrthoHalf float32
}

// Forward returns the unit view direction.
func (s State) Forward() math32.Vector3 {
	return s.Target.Sub(s.Position).Normal()
}

// Default framing parameters.
const (
	// DefaultFOV is the perspective field of view in degrees.
	DefaultFOV float32 = 50

	// DefaultDistanceMultiple scales the axis-view camera distance by the
	// scene's largest relevant dimension.
	DefaultDistanceMultiple float32 = 2.5
)

// Controller computes camera state for the four view modes.
// The zero value is not usable; create one with NewController.
type Controller struct {
	fov      float32
	distMult float32
}

// NewController creates a controller with the default framing parameters.
func NewController() *Controller {
	return &Controller{fov: DefaultFOV, distMult: DefaultDistanceMultiple}
}

// SetDistanceMultiple overrides the axis-view distance multiple.
// Values below 1 are raised to 1 so the camera never sits inside the scene.
func (c *Controller) SetDistanceMultiple(m float32) {
	c.distMult = math32.Max(m, 1)
}

// Frame computes the camera state for the given container, holding-area
// visibility, and mode. When the holding area is visible the perspective
// camera pulls back and shifts along +X so both regions stay in frame.
func (c *Controller) Frame(container document.Container, hasUnpacked bool, mode ViewMode) State {
	w, h, d := container.Width, container.Height, container.Depth
	center := math32.Vec3(w/2, h/2, d/2)

	// The framed region grows to cover the holding area when it is shown.
	extentX := w
	if hasUnpacked {
		area := scene.HoldingAreaFor(container, scene.DefaultCellSize, scene.DefaultItemsPerRow)
		extentX = area.Origin.X + area.Size.X
		center.X = extentX / 2
	}

	st := State{
		Mode:       mode,
		Target:     center,
		PanEnabled: true,
	}

	switch mode {
	case Top:
		dist := c.distMult * math32.Max(extentX, d)
		st.Position = center.Add(math32.Vec3(0, dist, 0))
		st.OrthoHalf = math32.Max(extentX, d) * 0.75
	case Front:
		dist := c.distMult * math32.Max(extentX, h)
		st.Position = center.Add(math32.Vec3(0, 0, dist))
		st.OrthoHalf = math32.Max(extentX, h) * 0.75
	case Side:
		dist := c.distMult * math32.Max(h, d)
		st.Position = center.Add(math32.Vec3(dist, 0, 0))
		st.OrthoHalf = math32.Max(h, d) * 0.75
	default: // Perspective
		st.Mode = Perspective
		st.OrbitEnabled = true
		st.FOV = c.fov
		st.Position = center.Add(math32.Vec3(extentX*0.6, h*1.2, d*1.8).MulScalar(perspectivePullback(extentX, h, d)))
	}

	return st
}

// perspectivePullback keeps small scenes from filling the frame and large
// scenes from clipping: the offset vector is scaled so its length is at
// least the scene's largest dimension.
func perspectivePullback(w, h, d float32) float32 {
	largest := math32.Max(w, math32.Max(h, d))
	offset := math32.Vec3(w*0.6, h*1.2, d*1.8).Length()
	if offset < largest {
		return largest / offset
	}
	return 1
}
