package scene

import (
	"testing"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/document"
)

func mustDecode(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return doc
}

func newTestSync() (*Synchronizer, *Lifecycle) {
	lm := NewLifecycle()
	return NewSynchronizer(lm), lm
}

func TestRebuildContainerDecorations(t *testing.T) {
	s, _ := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{"container": {"width": 10, "height": 5, "depth": 5}}`))

	if gen.Volume == nil || gen.Wireframe == nil {
		t.Fatal("container volume and wireframe must exist")
	}
	if len(gen.CornerMarkers) != 8 {
		t.Errorf("corner markers = %d, want 8", len(gen.CornerMarkers))
	}
	if len(gen.BoundaryRects) != 6 {
		t.Errorf("boundary rectangles = %d, want 6", len(gen.BoundaryRects))
	}

	seen := map[string]bool{}
	for _, r := range gen.BoundaryRects {
		seen[r.Color] = true
	}
	if len(seen) != 6 {
		t.Errorf("boundary rectangles share colors: %v", seen)
	}

	// Minimum corner at origin, center at half size.
	if want := math32.Vec3(5, 2.5, 2.5); gen.Volume.Center != want {
		t.Errorf("container center = %v, want %v", gen.Volume.Center, want)
	}

	if !gen.Volume.Material.Transparent {
		t.Error("container volume should be translucent")
	}
	if gen.Volume.Pickable {
		t.Error("container volume must not be pickable")
	}
}

func TestRebuildFallbackContainer(t *testing.T) {
	s, _ := newTestSync()

	gen := s.Rebuild(nil)
	c := gen.Container
	if c.Width != document.FallbackWidth || c.Height != document.FallbackHeight || c.Depth != document.FallbackDepth {
		t.Errorf("container = %+v, want documented fallback", c)
	}
}

func TestRebuildPlacedItem(t *testing.T) {
	s, _ := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [{"id": "a", "name": "Box A", "dimensions": [2,2,2],
		           "position": [0,0,0], "rotation": [0,0,90]}]
	}`))

	if len(gen.Items) != 1 {
		t.Fatalf("item meshes = %d, want 1", len(gen.Items))
	}
	m := gen.Items[0]

	// Square cross-section: z-rotation leaves bounds (2,2,2), center (1,1,1).
	if want := math32.Vec3(1, 1, 1); m.Center != want {
		t.Errorf("center = %v, want %v", m.Center, want)
	}
	if !m.Pickable {
		t.Error("item mesh must be pickable")
	}

	md, ok := gen.MetadataFor(m)
	if !ok {
		t.Fatal("item mesh has no metadata")
	}
	if !md.Packed() {
		t.Error("placed item metadata should report packed")
	}
	placed, ok := md.Detail.(Placed)
	if !ok {
		t.Fatalf("detail = %T, want Placed", md.Detail)
	}
	if placed.Rotation.Z != 90 {
		t.Errorf("metadata rotation = %v, want z=90", placed.Rotation)
	}
}

func TestRebuildClampsOverflowingItem(t *testing.T) {
	s, _ := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [{"id": "a", "dimensions": [3,3,3], "position": [9,4,4]}]
	}`))

	m := gen.Items[0]
	min := m.Bounds.Min
	if min.X > 7 || min.Y > 2 || min.Z > 2 {
		t.Errorf("clamped corner = %v, want <= (7,2,2)", min)
	}

	container := math32.Box3{Min: math32.Vector3{}, Max: math32.Vec3(10, 5, 5)}
	if !container.ContainsBox(m.Bounds) {
		t.Errorf("item bounds %v..%v outside container", m.Bounds.Min, m.Bounds.Max)
	}
	if gen.Diagnostics.ClampedItems != 1 {
		t.Errorf("clamped count = %d, want 1", gen.Diagnostics.ClampedItems)
	}

	// The metadata keeps the original stored position for diagnostics.
	md := gen.Metadata["a"]
	if placed := md.Detail.(Placed); placed.Position != math32.Vec3(9, 4, 4) {
		t.Errorf("metadata position = %v, want stored (9,4,4)", placed.Position)
	}
}

func TestRebuildAllItemsInBounds(t *testing.T) {
	s, _ := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{
		"container": {"width": 12, "height": 6, "depth": 8},
		"items": [
			{"id": "a", "dimensions": [2,3,1], "position": [0,0,0], "rotation": [0,0,90]},
			{"id": "b", "dimensions": [4,2,6], "position": [11,5,7], "rotation": [90,0,0]},
			{"id": "c", "dimensions": [1,1,1], "position": [5,2,3]},
			{"id": "d", "dimensions": [6,1,2], "position": [-3,-1,-2], "rotation": [0,90,0]}
		]
	}`))

	container := math32.Box3{Min: math32.Vector3{}, Max: math32.Vec3(12, 6, 8)}
	for _, m := range gen.Items {
		if !container.ContainsBox(m.Bounds) {
			t.Errorf("item %s bounds %v..%v outside container",
				m.ItemID, m.Bounds.Min, m.Bounds.Max)
		}
	}
}

func TestRebuildSkipsMalformedItems(t *testing.T) {
	s, lm := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [
			{"id": "ok", "dimensions": [1,1,1], "position": [0,0,0]},
			{"id": "no-dims", "position": [1,1,1]},
			{"id": "no-pos", "dimensions": [1,1,1]}
		],
		"unpacked_items": [
			{"id": "u-ok", "dimensions": [1,1,1], "reason": "full"},
			{"id": "u-bad"}
		]
	}`))

	if len(gen.Items) != 2 {
		t.Errorf("rendered items = %d, want 2 (one placed, one unpacked)", len(gen.Items))
	}
	if gen.Diagnostics.SkippedItems != 3 {
		t.Errorf("skipped = %d, want 3", gen.Diagnostics.SkippedItems)
	}
	if lm.Count(gen.Handle) == 0 {
		t.Error("valid items should still be tracked")
	}
}

func TestRebuildHoldingArea(t *testing.T) {
	s, _ := newTestSync()

	t.Run("created when unpacked items exist", func(t *testing.T) {
		gen := s.Rebuild(mustDecode(t, `{
			"container": {"width": 10, "height": 5, "depth": 5},
			"unpacked_items": [{"id": "u", "dimensions": [2,2,2], "reason": "no space"}]
		}`))
		if gen.Area == nil || gen.AreaFloor == nil || gen.AreaOutline == nil {
			t.Fatal("holding area decorations missing")
		}
		md := gen.Metadata["u"]
		if md.Packed() {
			t.Error("unpacked metadata reports packed")
		}
		if md.Reason() != "no space" {
			t.Errorf("reason = %q, want %q", md.Reason(), "no space")
		}
	})

	t.Run("absent when unpacked list empty", func(t *testing.T) {
		gen := s.Rebuild(mustDecode(t, `{
			"container": {"width": 10, "height": 5, "depth": 5},
			"items": [{"id": "a", "dimensions": [1,1,1], "position": [0,0,0]}]
		}`))
		if gen.Area != nil || gen.AreaFloor != nil || gen.AreaOutline != nil {
			t.Error("holding area must not be created for empty unpacked list")
		}
	})
}

func TestRebuildIdempotent(t *testing.T) {
	const docJSON = `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [
			{"id": "a", "dimensions": [2,2,2], "position": [0,0,0]},
			{"id": "b", "dimensions": [3,1,2], "position": [4,0,0], "rotation": [0,0,90]}
		],
		"unpacked_items": [{"id": "u", "dimensions": [1,1,1], "reason": "x"}]
	}`

	s, lm := newTestSync()
	first := s.Rebuild(mustDecode(t, docJSON))
	firstCount := lm.Count(first.Handle)
	firstCenters := map[string]math32.Vector3{}
	for _, m := range first.Items {
		firstCenters[m.ItemID] = m.Center
	}

	second := s.Rebuild(mustDecode(t, docJSON))

	if got := lm.Count(second.Handle); got != firstCount {
		t.Errorf("resource count = %d, want %d", got, firstCount)
	}
	if len(second.Items) != len(first.Items) {
		t.Fatalf("item count = %d, want %d", len(second.Items), len(first.Items))
	}
	for _, m := range second.Items {
		if m.Center != firstCenters[m.ItemID] {
			t.Errorf("item %s center = %v, want %v", m.ItemID, m.Center, firstCenters[m.ItemID])
		}
	}

	// The superseded generation is fully disposed.
	if got := lm.Count(first.Handle); got != 0 {
		t.Errorf("previous generation still tracks %d resources", got)
	}
	for _, m := range first.Items {
		if !m.Disposed() {
			t.Errorf("mesh %s from previous generation not disposed", m.ItemID)
		}
	}
}

func TestSyncSkipsUnchangedDocument(t *testing.T) {
	const docJSON = `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [{"id": "a", "dimensions": [2,2,2], "position": [0,0,0]}]
	}`

	s, _ := newTestSync()
	first := s.Sync(mustDecode(t, docJSON))
	second := s.Sync(mustDecode(t, docJSON))

	if first != second {
		t.Error("Sync with unchanged fingerprint should return the live generation")
	}
	if first.Seq != second.Seq {
		t.Errorf("seq changed from %d to %d without a rebuild", first.Seq, second.Seq)
	}

	third := s.Sync(mustDecode(t, `{
		"container": {"width": 11, "height": 5, "depth": 5},
		"items": [{"id": "a", "dimensions": [2,2,2], "position": [0,0,0]}]
	}`))
	if third == second {
		t.Error("Sync with a changed document should rebuild")
	}
	if third.Seq <= second.Seq {
		t.Errorf("seq = %d, want > %d", third.Seq, second.Seq)
	}
}

func TestHighlight(t *testing.T) {
	s, _ := newTestSync()
	gen := s.Rebuild(mustDecode(t, `{
		"container": {"width": 10, "height": 5, "depth": 5},
		"items": [
			{"id": "a", "dimensions": [1,1,1], "position": [0,0,0]},
			{"id": "b", "dimensions": [1,1,1], "position": [2,0,0]}
		]
	}`))

	gen.Highlight("b")
	for _, m := range gen.Items {
		if want := m.ItemID == "b"; m.Highlighted != want {
			t.Errorf("item %s highlighted = %v, want %v", m.ItemID, m.Highlighted, want)
		}
	}

	gen.Highlight("a")
	highlighted := 0
	for _, m := range gen.Items {
		if m.Highlighted {
			highlighted++
		}
	}
	if highlighted != 1 {
		t.Errorf("highlighted meshes = %d, want exactly 1", highlighted)
	}

	gen.ClearHighlights()
	for _, m := range gen.Items {
		if m.Highlighted {
			t.Errorf("item %s still highlighted after clear", m.ItemID)
		}
	}
}
