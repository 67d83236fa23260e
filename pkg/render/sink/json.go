package sink

import (
	"encoding/json"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent      bool
	decorations bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONDecorations includes container and holding-area decoration
// geometry (wireframes, boundary rectangles, corner markers). Without this,
// only items and the container box are exported.
func WithJSONDecorations() JSONOption { return func(r *jsonRenderer) { r.decorations = true } }

type jsonOutput struct {
	Fingerprint string       `json:"fingerprint"`
	Seq         uint64       `json:"seq"`
	Container   jsonBox      `json:"container"`
	HoldingArea *jsonBox     `json:"holding_area,omitempty"`
	Items       []jsonItem   `json:"items"`
	Lines       []jsonLine   `json:"lines,omitempty"`
	Markers     []jsonBox    `json:"markers,omitempty"`
	Stats       jsonStats    `json:"stats"`
	Diagnostics jsonProblems `json:"diagnostics"`
}

type jsonBox struct {
	Min   [3]float32 `json:"min"`
	Max   [3]float32 `json:"max"`
	Color string     `json:"color,omitempty"`
}

type jsonItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Center    [3]float32 `json:"center"`
	Size      [3]float32 `json:"size"`
	Color     string     `json:"color,omitempty"`
	Packed    bool       `json:"packed"`
	Reason    string     `json:"reason,omitempty"`
	Rotation  [3]float32 `json:"rotation,omitempty"`
	StoredPos [3]float32 `json:"stored_position,omitempty"`
}

type jsonLine struct {
	Points [][3]float32 `json:"points"`
	Color  string       `json:"color"`
}

type jsonStats struct {
	PackedCount     int     `json:"packed_count"`
	UnpackedCount   int     `json:"unpacked_count"`
	ContainerVolume float32 `json:"container_volume"`
	PlacedVolume    float32 `json:"placed_volume"`
	Utilization     float32 `json:"utilization"`
}

type jsonProblems struct {
	SkippedItems   int `json:"skipped_items,omitempty"`
	ClampedItems   int `json:"clamped_items,omitempty"`
	DefaultedItems int `json:"defaulted_items,omitempty"`
}

// RenderJSON exports the generation as JSON for external tools. The export
// is a snapshot of the rendered scene, not the source document: clamped
// positions and defaulted sizes appear as rendered, while each item's
// stored position is preserved in its metadata fields.
func RenderJSON(gen *scene.Generation, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Fingerprint: gen.Fingerprint,
		Seq:         gen.Seq,
		Items:       []jsonItem{},
		Stats: jsonStats{
			PackedCount:     gen.Stats.PackedCount,
			UnpackedCount:   gen.Stats.UnpackedCount,
			ContainerVolume: gen.Stats.ContainerVolume,
			PlacedVolume:    gen.Stats.PlacedVolume,
			Utilization:     gen.Stats.Utilization,
		},
		Diagnostics: jsonProblems{
			SkippedItems:   gen.Diagnostics.SkippedItems,
			ClampedItems:   gen.Diagnostics.ClampedItems,
			DefaultedItems: gen.Diagnostics.DefaultedItems,
		},
	}

	if gen.Volume != nil {
		out.Container = boxJSON(gen.Volume.Bounds, gen.Container.Color)
	}
	if gen.Area != nil {
		b := boxJSON(gen.Area.Bounds(), "")
		out.HoldingArea = &b
	}

	for _, m := range gen.Items {
		item := jsonItem{
			ID:     m.ItemID,
			Center: vecJSON(m.Center),
			Size:   vecJSON(m.Geometry.Size),
			Color:  m.Material.Color,
		}
		if md, ok := gen.MetadataFor(m); ok {
			item.Name = md.Name
			item.Packed = md.Packed()
			item.Reason = md.Reason()
			if placed, ok := md.Detail.(scene.Placed); ok {
				item.Rotation = vecJSON(placed.Rotation)
				item.StoredPos = vecJSON(placed.Position)
			}
		}
		out.Items = append(out.Items, item)
	}

	if r.decorations {
		for _, l := range append([]*scene.Line{gen.Wireframe, gen.AreaOutline}, gen.BoundaryRects...) {
			if l == nil {
				continue
			}
			out.Lines = append(out.Lines, lineJSON(l))
		}
		for _, m := range gen.CornerMarkers {
			out.Markers = append(out.Markers, boxJSON(m.Bounds, m.Material.Color))
		}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func vecJSON(v math32.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func boxJSON(b math32.Box3, color string) jsonBox {
	return jsonBox{Min: vecJSON(b.Min), Max: vecJSON(b.Max), Color: color}
}

func lineJSON(l *scene.Line) jsonLine {
	pts := make([][3]float32, len(l.Points))
	for i, p := range l.Points {
		pts[i] = vecJSON(p)
	}
	return jsonLine{Points: pts, Color: l.Color}
}
