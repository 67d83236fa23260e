// Package sink provides output format renderers for packing scenes.
//
// # Overview
//
// A "sink" transforms a live [scene.Generation] into a final output format.
// This package provides renderers for:
//
//   - SVG: Isometric projection with hover interactivity
//   - JSON: Scene data export for external tools
//   - DOT: Scene-graph diagrams rendered via Graphviz
//   - Text: Plain summaries for terminals
//
// # SVG Output
//
// [RenderSVG] projects the scene isometrically and produces an interactive
// SVG with:
//
//   - Depth-sorted item boxes with shaded faces
//   - Hover highlighting matching the live viewer's picking behavior
//   - Container wireframe, corner markers, and boundary rectangles
//   - Optional title and utilization footer
//
// Basic usage:
//
//	svg := sink.RenderSVG(gen,
//	    sink.WithSVGTitle("shipment 42"),
//	    sink.WithSVGWidth(1200),
//	)
//
// # JSON Output
//
// [RenderJSON] exports the rendered scene as JSON: item boxes as placed
// (after clamping and size defaulting), stats, and diagnostics. Decoration
// geometry is included with [WithJSONDecorations].
//
// # DOT Output
//
// [ToDOT] emits the scene graph in Graphviz DOT format and [RenderDOTSVG]
// rasterizes it to SVG via Graphviz. Placed items hang off the container
// node, unpacked items off the holding-area node.
//
// [scene.Generation]: github.com/binpack3d/packview/pkg/scene.Generation
package sink
