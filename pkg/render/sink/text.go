package sink

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/binpack3d/packview/pkg/scene"
)

// RenderText produces a plain-text scene summary for terminals and logs:
// the container, the utilization stats, and one row per item.
func RenderText(gen *scene.Generation) []byte {
	var buf bytes.Buffer

	c := gen.Container
	fmt.Fprintf(&buf, "Container %g x %g x %g\n", c.Width, c.Height, c.Depth)
	s := gen.Stats
	fmt.Fprintf(&buf, "Packed %d, unpacked %d, utilization %.1f%%\n",
		s.PackedCount, s.UnpackedCount, s.Utilization)
	if d := gen.Diagnostics; d.SkippedItems > 0 || d.ClampedItems > 0 {
		fmt.Fprintf(&buf, "Problems: %d skipped, %d clamped\n", d.SkippedItems, d.ClampedItems)
	}
	buf.WriteByte('\n')

	w := tabwriter.NewWriter(&buf, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tSIZE\tSTATUS")
	for _, m := range gen.Items {
		md, ok := gen.MetadataFor(m)
		if !ok {
			continue
		}
		name := md.Name
		if name == "" {
			name = md.ID
		}
		status := "unpacked"
		if reason := md.Reason(); reason != "" {
			status = "unpacked (" + reason + ")"
		}
		if placed, ok := md.Detail.(scene.Placed); ok {
			status = fmt.Sprintf("at (%g, %g, %g)", placed.Position.X, placed.Position.Y, placed.Position.Z)
		}
		fmt.Fprintf(w, "%s\t%g x %g x %g\t%s\n",
			name, md.Dimensions.X, md.Dimensions.Y, md.Dimensions.Z, status)
	}
	w.Flush()

	return buf.Bytes()
}
