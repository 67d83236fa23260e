// Package render provides static visualization rendering for packing scenes.
//
// # Overview
//
// This package contains the rendering pipeline that transforms live scene
// generations into file outputs. It provides:
//
//   - Isometric SVG projection with hover highlighting (in [sink])
//   - JSON scene export for external tools (in [sink])
//   - Scene-graph DOT diagrams rendered via Graphviz (in [sink])
//   - Plain-text summaries for terminals (in [sink])
//
// The live terminal viewer does not go through this package; it draws
// directly from engine frames. These sinks exist for the render command and
// the HTTP server, where the output is a file rather than a display.
//
// [sink]: github.com/binpack3d/packview/pkg/render/sink
package render
