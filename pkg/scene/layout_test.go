package scene

import (
	"fmt"
	"testing"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/document"
)

func unpackedN(n int, size math32.Vector3) []document.UnpackedItem {
	items := make([]document.UnpackedItem, n)
	for i := range items {
		items[i] = document.UnpackedItem{
			ID:         fmt.Sprintf("u%d", i),
			Name:       fmt.Sprintf("Unpacked %d", i),
			Dimensions: size,
		}
	}
	return items
}

func TestPlaceUnpackedGrid(t *testing.T) {
	// Deep enough that three rows of the grid fit without clamping.
	container := document.Container{Width: 10, Height: 5, Depth: 24}
	area := HoldingAreaFor(container, DefaultCellSize, DefaultItemsPerRow)

	items := unpackedN(7, math32.Vec3(2, 2, 2))
	placements := PlaceUnpacked(items, area, DefaultCellSize, DefaultItemsPerRow)

	if len(placements) != 7 {
		t.Fatalf("len(placements) = %d, want 7", len(placements))
	}

	// 7 items at 3 per row: rows of 3, 3, 1.
	rows := map[int]int{}
	for i, p := range placements {
		wantRow := i / DefaultItemsPerRow
		rows[wantRow]++

		// Row-major: items in a later row sit deeper along Z.
		if i >= DefaultItemsPerRow {
			prev := placements[i-DefaultItemsPerRow]
			if p.Position.Z <= prev.Position.Z {
				t.Errorf("item %d (row %d) z = %v, not deeper than item %d z = %v",
					i, wantRow, p.Position.Z, i-DefaultItemsPerRow, prev.Position.Z)
			}
		}
	}
	if rows[0] != 3 || rows[1] != 3 || rows[2] != 1 {
		t.Errorf("row occupancy = %v, want {0:3, 1:3, 2:1}", rows)
	}

	bounds := area.Bounds()
	for i, p := range placements {
		itemMax := p.Position.Add(p.Item.Dimensions)
		if !bounds.ContainsPoint(p.Position) || !bounds.ContainsPoint(itemMax) {
			t.Errorf("item %d at %v (max %v) outside holding area %v..%v",
				i, p.Position, itemMax, bounds.Min, bounds.Max)
		}
	}
}

func TestPlaceUnpackedShallowAreaClampsRows(t *testing.T) {
	// A depth-5 container gives an 8-deep holding area, so only the first
	// row fits at its grid position; later rows pull back to the same
	// clamped depth rather than spilling past the boundary.
	container := document.Container{Width: 10, Height: 5, Depth: 5}
	area := HoldingAreaFor(container, DefaultCellSize, DefaultItemsPerRow)

	items := unpackedN(7, math32.Vec3(2, 2, 2))
	placements := PlaceUnpacked(items, area, DefaultCellSize, DefaultItemsPerRow)

	wantZ := area.Origin.Z + area.Size.Z - 2
	for i, p := range placements[DefaultItemsPerRow:] {
		if p.Position.Z != wantZ {
			t.Errorf("item %d z = %v, want clamped %v", i+DefaultItemsPerRow, p.Position.Z, wantZ)
		}
	}

	bounds := area.Bounds()
	for i, p := range placements {
		if !bounds.ContainsPoint(p.Position.Add(p.Item.Dimensions)) {
			t.Errorf("item %d extends outside the holding area", i)
		}
	}
}

func TestPlaceUnpackedClampsOversized(t *testing.T) {
	container := document.Container{Width: 10, Height: 5, Depth: 5}
	area := HoldingAreaFor(container, DefaultCellSize, DefaultItemsPerRow)

	// Taller than the holding area: must be clamped to its floor, not
	// rendered outside the boundary.
	items := unpackedN(4, math32.Vec3(7, 30, 7))
	for i, p := range PlaceUnpacked(items, area, DefaultCellSize, DefaultItemsPerRow) {
		if p.Position.X < area.Origin.X || p.Position.Z < area.Origin.Z {
			t.Errorf("item %d at %v placed before area origin %v", i, p.Position, area.Origin)
		}
		if p.Position.Y != area.Origin.Y {
			t.Errorf("item %d y = %v, want floor %v", i, p.Position.Y, area.Origin.Y)
		}
		if maxX := p.Position.X + p.Item.Dimensions.X; maxX > area.Origin.X+area.Size.X {
			t.Errorf("item %d extends to x=%v beyond area width", i, maxX)
		}
	}
}

func TestHoldingAreaFor(t *testing.T) {
	tests := []struct {
		name      string
		container document.Container
		wantSize  math32.Vector3
	}{
		{
			"tracks container height and depth",
			document.Container{Width: 10, Height: 12, Depth: 9},
			math32.Vec3(DefaultItemsPerRow*DefaultCellSize, 12, 9),
		},
		{
			"small container raised to one cell",
			document.Container{Width: 4, Height: 2, Depth: 3},
			math32.Vec3(DefaultItemsPerRow*DefaultCellSize, DefaultCellSize, DefaultCellSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area := HoldingAreaFor(tt.container, DefaultCellSize, DefaultItemsPerRow)
			if area.Size != tt.wantSize {
				t.Errorf("size = %v, want %v", area.Size, tt.wantSize)
			}
			wantX := tt.container.Width + HoldingAreaGap
			if area.Origin.X != wantX {
				t.Errorf("origin.X = %v, want %v", area.Origin.X, wantX)
			}
		})
	}
}

func TestPlaceUnpackedPure(t *testing.T) {
	container := document.Container{Width: 10, Height: 5, Depth: 5}
	area := HoldingAreaFor(container, DefaultCellSize, DefaultItemsPerRow)
	items := unpackedN(5, math32.Vec3(1, 1, 1))

	a := PlaceUnpacked(items, area, DefaultCellSize, DefaultItemsPerRow)
	b := PlaceUnpacked(items, area, DefaultCellSize, DefaultItemsPerRow)
	for i := range a {
		if a[i].Position != b[i].Position {
			t.Fatalf("placement %d differs between identical calls: %v != %v",
				i, a[i].Position, b[i].Position)
		}
	}
}
