package scene

import (
	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/document"
)

// Holding-area layout defaults.
const (
	// DefaultCellSize is the edge length of one grid cell in the holding area.
	DefaultCellSize float32 = 8

	// DefaultItemsPerRow is the number of grid columns.
	DefaultItemsPerRow = 3

	// HoldingAreaGap is the clearance between the container's +X face and
	// the holding area.
	HoldingAreaGap float32 = 4
)

// HoldingArea is the region beside the container where unpacked items are
// laid out for inspection. Its origin is the minimum corner; its width is
// fixed by the grid, while height and depth follow the current container so
// the area scales with it.
type HoldingArea struct {
	Origin math32.Vector3
	Size   math32.Vector3
}

// Bounds returns the holding area's world-space box.
func (a HoldingArea) Bounds() math32.Box3 {
	return math32.Box3{Min: a.Origin, Max: a.Origin.Add(a.Size)}
}

// HoldingAreaFor derives the holding area from the container: anchored past
// the container's +X face with a fixed gap, grid-wide, and at least one cell
// tall and deep.
func HoldingAreaFor(c document.Container, cellSize float32, itemsPerRow int) HoldingArea {
	return HoldingArea{
		Origin: math32.Vec3(c.Width+HoldingAreaGap, 0, 0),
		Size: math32.Vec3(
			float32(itemsPerRow)*cellSize,
			math32.Max(c.Height, cellSize),
			math32.Max(c.Depth, cellSize),
		),
	}
}

// Placement pairs an unpacked item with its assigned minimum-corner position
// in the holding area.
type Placement struct {
	Item     document.UnpackedItem
	Position math32.Vector3
}

// PlaceUnpacked lays out unpacked items row-major on the holding-area grid:
// row = index / itemsPerRow, column = index % itemsPerRow, columns along X
// and rows along Z, items resting on the area floor. Each computed corner is
// clamped into the holding-area bounds so oversized items cannot render
// outside the decorative boundary. Pure function of its inputs.
func PlaceUnpacked(items []document.UnpackedItem, area HoldingArea, cellSize float32, itemsPerRow int) []Placement {
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	placements := make([]Placement, 0, len(items))
	for i, it := range items {
		row := i / itemsPerRow
		col := i % itemsPerRow

		pos := area.Origin.Add(math32.Vec3(float32(col)*cellSize, 0, float32(row)*cellSize))
		placements = append(placements, Placement{
			Item:     it,
			Position: clampIntoArea(pos, it.Dimensions, area),
		})
	}
	return placements
}

// clampIntoArea pulls pos back so pos+size stays inside the area, with the
// area origin as the floor for items larger than the area itself.
func clampIntoArea(pos, size math32.Vector3, area HoldingArea) math32.Vector3 {
	max := area.Origin.Add(area.Size).Sub(size)
	return math32.Vec3(
		math32.Max(area.Origin.X, math32.Min(pos.X, max.X)),
		math32.Max(area.Origin.Y, math32.Min(pos.Y, max.Y)),
		math32.Max(area.Origin.Z, math32.Min(pos.Z, max.Z)),
	)
}
