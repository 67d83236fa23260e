package engine

import (
	"sync"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/scene"
	"github.com/binpack3d/packview/pkg/scene/camera"
	"github.com/binpack3d/packview/pkg/scene/picking"
)

// Frame is one render-ready snapshot handed to a [Surface]. The generation
// pointer stays valid for the duration of Present; surfaces must not retain
// it across frames because its resources may be disposed by the next sync.
type Frame struct {
	// Seq is the engine frame counter, monotonic across the engine's life.
	Seq uint64

	// Generation is the live scene, nil when no document has arrived yet.
	Generation *scene.Generation

	// Camera is the framing state for this frame.
	Camera camera.State

	// Hover is the current pointer hit, nil when nothing is hovered.
	Hover *picking.Hit

	// Stats is the document summary for HUD display.
	Stats document.Stats
}

// Surface is the display the engine presents frames to. Implementations
// include the terminal viewer and the offscreen surface used by the HTTP
// server and tests.
type Surface interface {
	// Init prepares the surface at the given pixel size. A failure here is
	// the only fatal engine error; the engine mounts nothing when the
	// surface cannot initialize.
	Init(width, height int) error

	// Present draws one frame. Presentation errors are recoverable: the
	// engine logs them and keeps running.
	Present(frame Frame) error

	// Resize adjusts the surface to a new pixel size.
	Resize(width, height int) error

	// Close releases the surface. Called exactly once, after the frame
	// loop has stopped and the scene has been disposed.
	Close() error
}

// Offscreen is a headless surface that records the frames presented to it.
// The HTTP server uses it to expose scene snapshots without a display, and
// tests use it to observe engine output.
type Offscreen struct {
	mu     sync.Mutex
	width  int
	height int
	frames uint64
	last   Frame
	closed bool
}

// NewOffscreen creates an offscreen surface.
func NewOffscreen() *Offscreen {
	return &Offscreen{}
}

// Init implements [Surface].
func (o *Offscreen) Init(width, height int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.width, o.height = width, height
	return nil
}

// Present records the frame.
func (o *Offscreen) Present(frame Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames++
	o.last = frame
	return nil
}

// Resize implements [Surface].
func (o *Offscreen) Resize(width, height int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.width, o.height = width, height
	return nil
}

// Close implements [Surface].
func (o *Offscreen) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// LastFrame returns the most recently presented frame and whether any frame
// has been presented.
func (o *Offscreen) LastFrame() (Frame, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.frames > 0
}

// FrameCount returns the number of frames presented.
func (o *Offscreen) FrameCount() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames
}

// Closed reports whether Close has run.
func (o *Offscreen) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Size returns the current surface size.
func (o *Offscreen) Size() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.width, o.height
}
