package packing

import (
	"encoding/json"

	"github.com/binpack3d/packview/pkg/errors"
)

// result mirrors the JSON shape of a pack response.
type result struct {
	Bins       []packedBin    `json:"bins"`
	Statistics statistics     `json:"statistics"`
	Unpacked   []unpackedItem `json:"unpacked_items"`
}

type packedBin struct {
	BinID       string       `json:"bin_id"`
	Dimensions  []float32    `json:"dimensions"`
	Items       []packedItem `json:"items"`
	Utilization float64      `json:"utilization"`
}

type packedItem struct {
	ID           string    `json:"id"`
	Position     []float32 `json:"position"`
	Rotation     []float32 `json:"rotation"`
	Dimensions   []float32 `json:"dimensions"`
	Color        string    `json:"color"`
	OriginalName string    `json:"original_name"`
}

type unpackedItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Dimensions []float32 `json:"dimensions"`
	Color      string    `json:"color"`
	Reason     string    `json:"reason"`
	Quantity   int       `json:"quantity"`
}

// statistics carries the summary fields the client inspects. The service
// sends more; unknown fields are ignored.
type statistics struct {
	Success          bool    `json:"success"`
	Error            string  `json:"error"`
	SpaceUtilization float64 `json:"space_utilization"`
	ItemsPacked      int     `json:"items_packed"`
	TotalItems       int     `json:"total_items"`
}

// docWire is the viewer document shape built from a pack response.
type docWire struct {
	Container docContainer `json:"container"`
	Items     []docItem    `json:"items"`
	Unpacked  []docItem    `json:"unpacked_items,omitempty"`
}

type docContainer struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
}

type docItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Dimensions []float32 `json:"dimensions"`
	Position   []float32 `json:"position,omitempty"`
	Rotation   []float32 `json:"rotation,omitempty"`
	Color      string    `json:"color,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// documentJSON converts the response into viewer document wire form.
// The viewer shows a single container, so only the first bin's placements
// are carried over; fallback dimensions come from the request when the
// response has no bins.
func (r result) documentJSON(spec ContainerSpec) ([]byte, error) {
	w := docWire{
		Container: docContainer{Width: spec.Width, Height: spec.Height, Depth: spec.Depth},
	}
	if len(r.Bins) > 0 {
		bin := r.Bins[0]
		if len(bin.Dimensions) == 3 {
			w.Container = docContainer{
				Width:  bin.Dimensions[0],
				Height: bin.Dimensions[1],
				Depth:  bin.Dimensions[2],
			}
		}
		for _, it := range bin.Items {
			w.Items = append(w.Items, docItem{
				ID:         it.ID,
				Name:       it.OriginalName,
				Dimensions: it.Dimensions,
				Position:   it.Position,
				Rotation:   it.Rotation,
				Color:      it.Color,
			})
		}
	}
	for _, un := range r.Unpacked {
		w.Unpacked = append(w.Unpacked, docItem{
			ID:         un.ID,
			Name:       un.Name,
			Dimensions: un.Dimensions,
			Color:      un.Color,
			Reason:     un.Reason,
		})
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode packing result")
	}
	return data, nil
}
