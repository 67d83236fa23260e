package scene

import "cogentcore.org/core/math32"

// ItemMetadata is the typed record attached to each item mesh, consumed by
// picking and tooltips. The Detail field distinguishes placed items from
// unpacked ones; it is always one of [Placed] or [Unplaced].
type ItemMetadata struct {
	ID         string
	Name       string
	Dimensions math32.Vector3
	Color      string
	Detail     Detail
}

// Packed reports whether the item was placed inside the container.
func (m ItemMetadata) Packed() bool {
	_, ok := m.Detail.(Placed)
	return ok
}

// Reason returns the unpacked reason, or "" for placed items.
func (m ItemMetadata) Reason() string {
	if u, ok := m.Detail.(Unplaced); ok {
		return u.Reason
	}
	return ""
}

// Detail is the variant part of [ItemMetadata].
type Detail interface {
	isDetail()
}

// Placed carries the container-local placement of a packed item.
// Position is the item's original stored minimum corner (pre-clamp),
// Rotation its angles in degrees.
type Placed struct {
	Position math32.Vector3
	Rotation math32.Vector3
}

func (Placed) isDetail() {}

// Unplaced carries the explanation for an item that did not fit.
type Unplaced struct {
	Reason string
}

func (Unplaced) isDetail() {}
