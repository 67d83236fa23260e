package scene

import (
	"testing"

	"cogentcore.org/core/math32"
)

func TestLifecycleDisposeGeneration(t *testing.T) {
	lm := NewLifecycle()
	h := lm.BeginGeneration()

	geom := NewGeometry(math32.Vec3(1, 1, 1))
	mat := NewMaterial("#FF0000")
	mesh := NewMesh(geom, mat, math32.Vec3(0.5, 0.5, 0.5))
	line := NewLine("#333333", math32.Vec3(0, 0, 0), math32.Vec3(1, 0, 0))
	for _, r := range []Resource{geom, mat, mesh, line} {
		lm.Track(h, r)
	}

	if got := lm.Count(h); got != 4 {
		t.Fatalf("Count() = %d, want 4", got)
	}

	lm.DisposeGeneration(h)

	if got := lm.Count(h); got != 0 {
		t.Errorf("Count() after dispose = %d, want 0", got)
	}
	for _, r := range []Resource{geom, mat, mesh, line} {
		if !r.Disposed() {
			t.Errorf("resource %d not disposed", r.ResourceID())
		}
	}
	if line.Points != nil {
		t.Error("line points not released")
	}
}

func TestLifecycleDisposeIdempotent(t *testing.T) {
	lm := NewLifecycle()
	h := lm.BeginGeneration()
	lm.Track(h, NewMaterial("#FFFFFF"))

	// Disposing twice, and disposing unknown or empty generations,
	// must all be no-ops.
	lm.DisposeGeneration(h)
	lm.DisposeGeneration(h)
	lm.DisposeGeneration(Handle(9999))
	lm.DisposeGeneration(lm.BeginGeneration())

	if got := lm.Count(h); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestLifecycleTrackAfterDispose(t *testing.T) {
	lm := NewLifecycle()
	h := lm.BeginGeneration()
	lm.DisposeGeneration(h)

	// Tracking against a dead handle must not leak the resource.
	mat := NewMaterial("#FFFFFF")
	lm.Track(h, mat)

	if !mat.Disposed() {
		t.Error("resource tracked against disposed generation should be disposed immediately")
	}
	if got := lm.Count(h); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestLifecycleDisposeAll(t *testing.T) {
	lm := NewLifecycle()

	var all []Resource
	for range 3 {
		h := lm.BeginGeneration()
		for range 5 {
			r := NewMaterial("#ABCDEF")
			lm.Track(h, r)
			all = append(all, r)
		}
	}
	if got := lm.Live(); got != 3 {
		t.Fatalf("Live() = %d, want 3", got)
	}

	lm.DisposeAll()

	if got := lm.Live(); got != 0 {
		t.Errorf("Live() after DisposeAll = %d, want 0", got)
	}
	for _, r := range all {
		if !r.Disposed() {
			t.Errorf("resource %d survived DisposeAll", r.ResourceID())
		}
	}
}
