package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/binpack3d/packview/pkg/errors"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/scene/camera"
)

const sampleDoc = `{
	"container": {"width": 10, "height": 5, "depth": 5},
	"items": [
		{
			"id": "box-1",
			"name": "first box",
			"dimensions": [2, 2, 2],
			"position": [4, 1.5, 1.5],
			"rotation": [0, 0, 0],
			"color": "#FF0000"
		}
	],
	"unpacked_items": []
}`

const sampleDocWithUnpacked = `{
	"container": {"width": 10, "height": 5, "depth": 5},
	"items": [],
	"unpacked_items": [
		{"id": "u-1", "name": "leftover", "dimensions": [2, 2, 2], "reason": "no space"}
	]
}`

func mustDecode(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return doc
}

func newTestEngine(t *testing.T) (*Engine, *Offscreen) {
	t.Helper()
	surface := NewOffscreen()
	eng, err := New(surface, WithSize(100, 100))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng, surface
}

type failingSurface struct {
	Offscreen
}

func (f *failingSurface) Init(width, height int) error {
	return errors.New("no display")
}

func TestNewSurfaceUnavailable(t *testing.T) {
	eng, err := New(&failingSurface{})
	if err == nil {
		t.Fatal("expected an error from a failing surface")
	}
	if eng != nil {
		t.Error("no engine must be returned when the surface cannot initialize")
	}
	if !pkgerrors.Is(err, pkgerrors.ErrCodeSurfaceUnavailable) {
		t.Errorf("error code = %v, want %v", pkgerrors.GetCode(err), pkgerrors.ErrCodeSurfaceUnavailable)
	}
}

func TestStepPresentsSubmittedDocument(t *testing.T) {
	eng, surface := newTestEngine(t)

	eng.Submit(mustDecode(t, sampleDoc))
	eng.Step()

	frame, ok := surface.LastFrame()
	if !ok {
		t.Fatal("expected a presented frame")
	}
	if frame.Generation == nil {
		t.Fatal("frame has no generation")
	}
	if got := frame.Generation.Container.Width; got != 10 {
		t.Errorf("container width = %v, want 10", got)
	}
	if frame.Stats.PackedCount != 1 {
		t.Errorf("stats.PackedCount = %d, want 1", frame.Stats.PackedCount)
	}
}

func TestStepBeforeFirstDocument(t *testing.T) {
	eng, surface := newTestEngine(t)

	eng.Step()

	frame, ok := surface.LastFrame()
	if !ok {
		t.Fatal("expected a presented frame")
	}
	if frame.Generation != nil {
		t.Error("no generation must be mounted before the first document")
	}
	if frame.Camera.Position == (camera.State{}).Position {
		t.Error("camera must be framed even with no scene")
	}
}

func TestSubmitCoalesces(t *testing.T) {
	eng, surface := newTestEngine(t)

	first := mustDecode(t, sampleDoc)
	second := mustDecode(t, sampleDocWithUnpacked)
	eng.Submit(first)
	eng.Submit(second)
	eng.Step()

	frame, _ := surface.LastFrame()
	if frame.Generation == nil {
		t.Fatal("frame has no generation")
	}
	if frame.Generation.Fingerprint != second.Fingerprint() {
		t.Error("coalescing must apply only the latest pending document")
	}

	// Only one rebuild happened for the two submissions.
	if frame.Generation.Seq != 1 {
		t.Errorf("generation.Seq = %d, want 1", frame.Generation.Seq)
	}
}

func TestUnchangedDocumentSkipsRebuild(t *testing.T) {
	eng, surface := newTestEngine(t)

	eng.Submit(mustDecode(t, sampleDoc))
	eng.Step()
	before, _ := surface.LastFrame()

	eng.Submit(mustDecode(t, sampleDoc))
	eng.Step()
	after, _ := surface.LastFrame()

	if before.Generation != after.Generation {
		t.Error("an identical document must not trigger a rebuild")
	}
}

func TestPointerHover(t *testing.T) {
	eng, _ := newTestEngine(t)

	eng.Submit(mustDecode(t, sampleDoc))
	eng.SetViewMode(camera.Front)
	// The item spans x [4,6], centered on the container's x midline, so the
	// front view's central ray passes through it.
	eng.PointerMoved(0, 0)
	eng.Step()

	hit, ok := eng.Hover()
	if !ok {
		t.Fatal("expected a hover hit at the viewport center")
	}
	if hit.ItemID != "box-1" {
		t.Errorf("hover.ItemID = %q, want %q", hit.ItemID, "box-1")
	}

	eng.PointerLeft()
	eng.Step()
	if _, ok := eng.Hover(); ok {
		t.Error("hover must clear after the pointer leaves")
	}
}

func TestSetViewModeReframes(t *testing.T) {
	eng, surface := newTestEngine(t)

	eng.Submit(mustDecode(t, sampleDoc))
	eng.Step()
	persp, _ := surface.LastFrame()

	eng.SetViewMode(camera.Top)
	eng.Step()
	top, _ := surface.LastFrame()

	if top.Camera.Mode != camera.Top {
		t.Errorf("camera mode = %v, want %v", top.Camera.Mode, camera.Top)
	}
	if top.Camera.Position == persp.Camera.Position {
		t.Error("switching modes must move the camera")
	}
	if top.Camera.OrbitEnabled {
		t.Error("orbit must be disabled in an axis view")
	}
}

func TestToggleHoldingAreaReframes(t *testing.T) {
	eng, surface := newTestEngine(t)

	eng.Submit(mustDecode(t, sampleDocWithUnpacked))
	eng.Step()
	shown, _ := surface.LastFrame()

	if visible := eng.ToggleHoldingArea(); visible {
		t.Fatal("toggle from the default must hide the holding area")
	}
	eng.Step()
	hidden, _ := surface.LastFrame()

	// Hiding the holding area narrows the framed region back to the
	// container, pulling the camera target toward -X.
	if hidden.Camera.Target.X >= shown.Camera.Target.X {
		t.Errorf("hidden target.X = %v, want < %v", hidden.Camera.Target.X, shown.Camera.Target.X)
	}
}

func TestCloseDisposesAndClosesSurface(t *testing.T) {
	surface := NewOffscreen()
	eng, err := New(surface)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	eng.Submit(mustDecode(t, sampleDoc))
	eng.Step()
	frame, _ := surface.LastFrame()
	gen := frame.Generation

	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !surface.Closed() {
		t.Error("surface must be closed on engine close")
	}
	for _, m := range gen.Items {
		if !m.Disposed() {
			t.Error("scene resources must be disposed on engine close")
		}
	}

	// Close is idempotent and Step is a no-op afterwards.
	if err := eng.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	frames := surface.FrameCount()
	eng.Step()
	if surface.FrameCount() != frames {
		t.Error("Step after Close must not present")
	}
}

func TestRunLoopPresentsFrames(t *testing.T) {
	surface := NewOffscreen()
	eng, err := New(surface, WithFrameInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.Submit(mustDecode(t, sampleDoc))

	deadline := time.After(2 * time.Second)
	for {
		if frame, ok := surface.LastFrame(); ok && frame.Generation != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the loop to present the document")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
