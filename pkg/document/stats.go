package document

// Stats summarizes a packing result for display alongside the rendered scene.
type Stats struct {
	PackedCount     int     `json:"packed_count"`
	UnpackedCount   int     `json:"unpacked_count"`
	ContainerVolume float32 `json:"container_volume"`
	PlacedVolume    float32 `json:"placed_volume"`

	// Utilization is the space-utilization percentage:
	// total placed-item volume / container volume * 100.
	Utilization float32 `json:"utilization"`
}

// ComputeStats derives the summary statistics for a document.
// Items flagged as malformed contribute nothing to the placed volume.
func ComputeStats(d *Document) Stats {
	s := Stats{
		PackedCount:     len(d.Items),
		UnpackedCount:   len(d.Unpacked),
		ContainerVolume: d.Container.Volume(),
	}
	for _, it := range d.Items {
		if it.MissingDimensions {
			continue
		}
		s.PlacedVolume += it.Volume()
	}
	if s.ContainerVolume > 0 {
		s.Utilization = s.PlacedVolume / s.ContainerVolume * 100
	}
	return s
}
