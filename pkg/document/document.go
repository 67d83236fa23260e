package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"cogentcore.org/core/math32"
	"github.com/google/uuid"
)

// Default values applied during decoding.
const (
	// DefaultColor is the item color used when a document omits one.
	DefaultColor = "#3B82F6"

	// DefaultContainerColor is the container tint used when a document omits one.
	DefaultContainerColor = "#8B4513"
)

// Fallback container dimensions, used when a document has no usable container.
const (
	FallbackWidth  = 17
	FallbackHeight = 8
	FallbackDepth  = 10
)

// namedColors maps the color names the packing service emits to hex values.
var namedColors = map[string]string{
	"red":    "#FF0000",
	"green":  "#00FF00",
	"blue":   "#0000FF",
	"yellow": "#FFFF00",
	"orange": "#FFA500",
	"purple": "#800080",
}

// Container is the bounding volume items were packed into.
// Dimensions are in meters and always positive after decoding.
type Container struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
	Color  string  `json:"color,omitempty"`
}

// Size returns the container dimensions as a vector.
func (c Container) Size() math32.Vector3 {
	return math32.Vec3(c.Width, c.Height, c.Depth)
}

// Volume returns the container volume in cubic meters.
func (c Container) Volume() float32 {
	return c.Width * c.Height * c.Depth
}

// PlacedItem is an item the packing service positioned inside the container.
//
// Position is the item's minimum corner in container-local coordinates,
// before rotation is applied. Rotation angles are degrees about each axis;
// the packing service emits multiples of 90.
type PlacedItem struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Dimensions math32.Vector3 `json:"dimensions"`
	Position   math32.Vector3 `json:"position"`
	Rotation   math32.Vector3 `json:"rotation"`
	Color      string         `json:"color"`

	// MissingDimensions and MissingPosition flag entries whose wire form
	// lacked the corresponding array. Such entries are skipped (and counted)
	// by the scene synchronizer rather than rejected at decode time.
	MissingDimensions bool `json:"-"`
	MissingPosition   bool `json:"-"`
}

// Volume returns the item volume in cubic meters.
// Volume is invariant under the axis-swap rotation model.
func (it PlacedItem) Volume() float32 {
	return it.Dimensions.X * it.Dimensions.Y * it.Dimensions.Z
}

// UnpackedItem is an item the packing service could not fit.
// It has no container-relative position; the holding-area layout assigns one.
type UnpackedItem struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Dimensions math32.Vector3 `json:"dimensions"`
	Color      string         `json:"color"`
	Reason     string         `json:"reason"`

	MissingDimensions bool `json:"-"`
}

// Document is one complete packing result: a container, the items placed in
// it, and the items that did not fit. Documents are immutable after Decode.
type Document struct {
	Container Container      `json:"container"`
	Items     []PlacedItem   `json:"items"`
	Unpacked  []UnpackedItem `json:"unpacked_items"`

	// fingerprint is the SHA-256 content hash of the wire form,
	// computed once in Decode.
	fingerprint string
}

// wire mirrors the JSON shape emitted by the packing service.
type wire struct {
	Container *wireContainer `json:"container"`
	Items     []wireItem     `json:"items"`
	Unpacked  []wireUnpacked `json:"unpacked_items"`
}

type wireContainer struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
	Color  string  `json:"color,omitempty"`
}

type wireItem struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Dimensions []float32 `json:"dimensions"`
	Position   []float32 `json:"position"`
	Rotation   []float32 `json:"rotation,omitempty"`
	Color      string    `json:"color,omitempty"`
}

type wireUnpacked struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Dimensions []float32 `json:"dimensions"`
	Color      string    `json:"color,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Decode parses a packing-result document from its JSON wire form and applies
// the documented defaults: missing ids are synthesized, missing colors take
// [DefaultColor], missing rotation is zero, and named colors are normalized
// to hex. A missing or non-positive container falls back to the documented
// 17x8x10 volume. Decode never fails on malformed per-item data; only
// structurally invalid JSON returns an error.
func Decode(data []byte) (*Document, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode packing document: %w", err)
	}

	doc := &Document{
		Container:   decodeContainer(w.Container),
		fingerprint: hashContent(data),
	}

	for i, raw := range w.Items {
		it := PlacedItem{
			ID:       fallbackID(raw.ID),
			Name:     fallbackName(raw.Name, raw.ID, i),
			Color:    NormalizeColor(raw.Color),
			Rotation: vecOrZero(raw.Rotation),
		}
		it.Dimensions, it.MissingDimensions = vecChecked(raw.Dimensions)
		it.Position, it.MissingPosition = vecChecked(raw.Position)
		doc.Items = append(doc.Items, it)
	}

	for i, raw := range w.Unpacked {
		un := UnpackedItem{
			ID:     fallbackID(raw.ID),
			Name:   fallbackName(raw.Name, raw.ID, i),
			Color:  NormalizeColor(raw.Color),
			Reason: raw.Reason,
		}
		un.Dimensions, un.MissingDimensions = vecChecked(raw.Dimensions)
		doc.Unpacked = append(doc.Unpacked, un)
	}

	return doc, nil
}

func decodeContainer(w *wireContainer) Container {
	if w == nil || w.Width <= 0 || w.Height <= 0 || w.Depth <= 0 {
		return Container{
			Width:  FallbackWidth,
			Height: FallbackHeight,
			Depth:  FallbackDepth,
			Color:  DefaultContainerColor,
		}
	}
	c := Container{Width: w.Width, Height: w.Height, Depth: w.Depth, Color: w.Color}
	if c.Color == "" {
		c.Color = DefaultContainerColor
	} else {
		c.Color = NormalizeColor(c.Color)
	}
	return c
}

// NormalizeColor maps named colors to hex and substitutes [DefaultColor] for
// anything that is neither a known name nor already a hex value.
func NormalizeColor(s string) string {
	if s == "" {
		return DefaultColor
	}
	if strings.HasPrefix(s, "#") {
		return s
	}
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		return hex
	}
	return DefaultColor
}

func fallbackID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func fallbackName(name, id string, index int) string {
	switch {
	case name != "":
		return name
	case id != "":
		return id
	default:
		return fmt.Sprintf("item-%d", index+1)
	}
}

// vecChecked converts a wire triple to a vector, reporting whether the wire
// form was missing or malformed.
func vecChecked(v []float32) (math32.Vector3, bool) {
	if len(v) != 3 {
		return math32.Vector3{}, true
	}
	return math32.Vec3(v[0], v[1], v[2]), false
}

func vecOrZero(v []float32) math32.Vector3 {
	if len(v) != 3 {
		return math32.Vector3{}
	}
	return math32.Vec3(v[0], v[1], v[2])
}
