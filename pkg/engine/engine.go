// Package engine runs the viewer's frame loop. It owns the scene
// synchronizer, the camera controller, and the picking service, and feeds
// render-ready frames to a [Surface].
//
// Documents arrive asynchronously through [Engine.Submit] and are coalesced:
// only the latest pending document is applied, at a frame boundary, so the
// surface never observes a half-synchronized scene. Pointer input, view-mode
// switches, and resizes are likewise applied at frame boundaries.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/scene"
	"github.com/binpack3d/packview/pkg/scene/camera"
	"github.com/binpack3d/packview/pkg/scene/picking"
)

// Default frame-loop parameters.
const (
	// DefaultFrameInterval is the frame period of the render loop.
	DefaultFrameInterval = time.Second / 30

	// DefaultWidth and DefaultHeight are the initial surface size used when
	// the caller does not supply one.
	DefaultWidth  = 960
	DefaultHeight = 540
)

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFrameInterval overrides the frame period.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithSize sets the initial surface size.
func WithSize(width, height int) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithSceneOptions forwards options to the scene synchronizer.
func WithSceneOptions(opts ...scene.Option) Option {
	return func(e *Engine) { e.sceneOpts = append(e.sceneOpts, opts...) }
}

// WithCameraController replaces the default camera controller.
func WithCameraController(c *camera.Controller) Option {
	return func(e *Engine) {
		if c != nil {
			e.frames = c
		}
	}
}

// pointerState is the latest pointer position in normalized device
// coordinates, or inactive when the pointer has left the viewport.
type pointerState struct {
	nx, ny float32
	active bool
}

// Engine drives the render loop: it applies pending documents, reframes the
// camera, resolves pointer hover, and presents frames to its surface.
// All exported methods are safe for concurrent use.
type Engine struct {
	surface   Surface
	lifecycle *scene.Lifecycle
	sync      *scene.Synchronizer
	frames    *camera.Controller
	picker    *picking.Service
	logger    *log.Logger
	interval  time.Duration
	sceneOpts []scene.Option

	mu       sync.Mutex
	pending  *document.Document
	queued   bool
	mode     camera.ViewMode
	cam      camera.State
	reframe  bool
	showArea bool
	width    int
	height   int
	pointer  pointerState
	hover    *picking.Hit
	frameSeq uint64
	last     Frame
	closed   bool

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates an engine bound to surface and initializes the surface.
// Surface initialization is the engine's only fatal error: on failure no
// scene is mounted and the returned error carries
// [errors.ErrCodeSurfaceUnavailable].
func New(surface Surface, opts ...Option) (*Engine, error) {
	e := &Engine{
		surface:  surface,
		frames:   camera.NewController(),
		logger:   log.Default(),
		interval: DefaultFrameInterval,
		mode:     camera.Perspective,
		reframe:  true,
		showArea: true,
		width:    DefaultWidth,
		height:   DefaultHeight,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := surface.Init(e.width, e.height); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurfaceUnavailable, err, "surface init failed")
	}

	e.lifecycle = scene.NewLifecycle()
	sceneOpts := append([]scene.Option{scene.WithLogger(e.logger)}, e.sceneOpts...)
	e.sync = scene.NewSynchronizer(e.lifecycle, sceneOpts...)
	e.picker = picking.NewService(picking.WithLogger(e.logger))
	return e, nil
}

// Run executes the frame loop until ctx is canceled or the engine is
// closed. It always presents one frame immediately so callers see the
// initial (possibly empty) scene without waiting a full frame period.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, "engine is already running")
	}
	defer close(e.done)

	e.Step()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stop:
			return nil
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step runs one frame: apply the pending document, reframe if needed,
// resolve hover, and present. Run calls it on every tick; headless callers
// (the HTTP server, tests) call it directly instead of running the loop.
func (e *Engine) Step() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	if e.queued {
		doc := e.pending
		e.pending, e.queued = nil, false
		prev := e.sync.Current()
		gen := e.sync.Sync(doc)
		if prev != gen {
			e.reframe = true
		}
	}

	gen := e.sync.Current()
	if e.reframe {
		e.cam = e.frames.Frame(e.container(gen), e.areaVisible(gen), e.mode)
		e.reframe = false
	}

	e.hover = nil
	if gen != nil && e.pointer.active {
		if hit, ok := e.picker.Hover(gen, e.cam, e.pointer.nx, e.pointer.ny, e.aspect()); ok {
			e.hover = &hit
		}
	} else if gen != nil {
		gen.ClearHighlights()
	}

	e.frameSeq++
	frame := Frame{
		Seq:        e.frameSeq,
		Generation: gen,
		Camera:     e.cam,
		Hover:      e.hover,
	}
	if gen != nil {
		frame.Stats = gen.Stats
	}
	e.last = frame
	e.mu.Unlock()

	if err := e.surface.Present(frame); err != nil {
		e.logger.Error("present failed", "seq", frame.Seq, "error", err)
	}
}

// Submit queues doc for the next frame. Pending documents coalesce: when
// several arrive within one frame period only the latest is applied.
// Submitting nil mounts the fallback scene.
func (e *Engine) Submit(doc *document.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = doc
	e.queued = true
}

// PointerMoved records the pointer position in normalized device
// coordinates ([-1, 1], y up). Hover is resolved at the next frame.
func (e *Engine) PointerMoved(nx, ny float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer = pointerState{nx: nx, ny: ny, active: true}
}

// PointerLeft clears the pointer; the next frame drops the hover highlight.
func (e *Engine) PointerLeft() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer = pointerState{}
}

// Resize updates the surface size used for aspect-correct picking.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()

	if err := e.surface.Resize(width, height); err != nil {
		e.logger.Error("resize failed", "width", width, "height", height, "error", err)
	}
}

// SetViewMode switches the camera preset and reframes at the next frame.
func (e *Engine) SetViewMode(mode camera.ViewMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
	e.reframe = true
}

// ViewMode returns the active camera preset.
func (e *Engine) ViewMode() camera.ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// ResetView restores the default framing for the active mode.
func (e *Engine) ResetView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reframe = true
}

// ToggleHoldingArea flips the holding-area visibility used for framing and
// returns the new state.
func (e *Engine) ToggleHoldingArea() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.showArea = !e.showArea
	e.reframe = true
	return e.showArea
}

// Stats returns the live document summary, zero before the first document.
func (e *Engine) Stats() document.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen := e.sync.Current(); gen != nil {
		return gen.Stats
	}
	return document.Stats{}
}

// Hover returns the current pointer hit.
func (e *Engine) Hover() (picking.Hit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hover == nil {
		return picking.Hit{}, false
	}
	return *e.hover, true
}

// Snapshot returns the most recently presented frame.
func (e *Engine) Snapshot() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Close shuts the engine down: it stops the frame loop, disposes every
// scene resource, and closes the surface, in that order. Close is
// idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	close(e.stop)
	if e.running.Load() {
		<-e.done
	}

	e.sync.Reset()
	e.lifecycle.DisposeAll()
	return e.surface.Close()
}

// container returns the framing container, falling back to the default box
// before the first document arrives.
func (e *Engine) container(gen *scene.Generation) document.Container {
	if gen != nil {
		return gen.Container
	}
	return document.Container{
		Width:  document.FallbackWidth,
		Height: document.FallbackHeight,
		Depth:  document.FallbackDepth,
	}
}

// areaVisible reports whether framing should include the holding area.
func (e *Engine) areaVisible(gen *scene.Generation) bool {
	return e.showArea && gen != nil && gen.Area != nil
}

func (e *Engine) aspect() float32 {
	if e.height == 0 {
		return 1
	}
	return float32(e.width) / float32(e.height)
}
