package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/binpack3d/packview/pkg/scene"
)

// DOTOptions configures scene-graph DOT rendering.
type DOTOptions struct {
	// Detailed includes dimensions and positions in node labels.
	// When false, only the item name is shown.
	Detailed bool
}

// ToDOT converts the generation's scene graph to Graphviz DOT format: the
// scene root fans out to the container and the holding area, which own
// their item nodes. The resulting DOT string can be rendered with
// [RenderDOTSVG].
//
// Unpacked items are rendered with dashed outlines to distinguish them from
// placed items.
func ToDOT(gen *scene.Generation, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	buf.WriteString("  \"scene\" [shape=ellipse, fillcolor=lightgrey];\n")
	fmt.Fprintf(&buf, "  \"container\" [label=%q];\n", containerLabel(gen, opts.Detailed))
	buf.WriteString("  \"scene\" -> \"container\";\n")
	if gen.Area != nil {
		buf.WriteString("  \"holding_area\" [style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n")
		buf.WriteString("  \"scene\" -> \"holding_area\";\n")
	}
	buf.WriteString("\n")

	for _, m := range gen.Items {
		md, ok := gen.MetadataFor(m)
		if !ok {
			continue
		}
		label := itemLabel(md, opts.Detailed)
		attrs := itemAttrs(md, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(md), strings.Join(attrs, ", "))
		if md.Packed() {
			fmt.Fprintf(&buf, "  \"container\" -> %q;\n", nodeID(md))
		} else {
			fmt.Fprintf(&buf, "  \"holding_area\" -> %q;\n", nodeID(md))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(md scene.ItemMetadata) string {
	return "item-" + md.ID
}

func containerLabel(gen *scene.Generation, detailed bool) string {
	if !detailed {
		return "container"
	}
	c := gen.Container
	return fmt.Sprintf("container\n%g x %g x %g", c.Width, c.Height, c.Depth)
}

func itemLabel(md scene.ItemMetadata, detailed bool) string {
	name := md.Name
	if name == "" {
		name = md.ID
	}
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("%g x %g x %g", md.Dimensions.X, md.Dimensions.Y, md.Dimensions.Z)}
	if placed, ok := md.Detail.(scene.Placed); ok {
		parts = append(parts, fmt.Sprintf("at (%g, %g, %g)", placed.Position.X, placed.Position.Y, placed.Position.Z))
	}
	if reason := md.Reason(); reason != "" {
		parts = append(parts, reason)
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func itemAttrs(md scene.ItemMetadata, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if md.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", md.Color))
	}
	if !md.Packed() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(dot string) ([]byte, error) {
	data, err := renderDOT(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderDOTPNG rasterizes a DOT graph to PNG using Graphviz.
func RenderDOTPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a pixel-sized
// one so the output scales like the other sinks.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
