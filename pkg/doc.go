// Package pkg provides the core libraries for Packview 3D packing-result
// visualization.
//
// # Overview
//
// Packview turns the JSON result documents produced by bin-packing services
// into live 3D scenes and file renderings. The pkg directory is organized
// into four main areas:
//
//  1. [document], [scene], [engine] - Domain logic (document decoding, scene
//     synchronization, frame loop)
//  2. [cache], [config], [httputil] - Infrastructure (caching, configuration,
//     HTTP retry)
//  3. [packing] - External packing-service client
//  4. [render] - File renderers (SVG, JSON, DOT, text)
//
// # Architecture
//
// The typical data flow through Packview:
//
//	Packing Service / Document File
//	         ↓
//	    [document] package (decode + fingerprint)
//	         ↓
//	    [scene] package (generation build + lifecycle)
//	         ↓
//	    [engine] package (frame loop, camera, picking)
//	         ↓
//	    SVG/JSON/DOT/text output or interactive viewer
//
// # Quick Start
//
// Load a document and render it to SVG:
//
//	import (
//	    "github.com/binpack3d/packview/pkg/document"
//	    "github.com/binpack3d/packview/pkg/render/sink"
//	    "github.com/binpack3d/packview/pkg/scene"
//	)
//
//	// 1. Decode the packing document
//	doc, _ := document.ReadFile("result.json")
//
//	// 2. Build a scene generation
//	lc := scene.NewLifecycle()
//	defer lc.DisposeAll()
//	gen := scene.NewSynchronizer(lc).Sync(doc)
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(gen)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [document] - Packing-result document model. Decodes the JSON wire form,
// applies defaults for missing fields, and fingerprints content for change
// detection.
//
// [scene] - Scene construction and resource lifecycle. A Synchronizer turns
// each document into a disposable Generation of meshes and lines; a
// Lifecycle tracks and releases every generation's resources.
//
// [scene/camera] - View-mode presets (perspective, top, front, side),
// framing, and projection state.
//
// [scene/picking] - Pointer-to-ray projection and ray/box hit testing
// against a generation's pickable meshes.
//
// [engine] - The frame loop. Owns the synchronizer, camera controller, and
// picking state; presents frames to a pluggable Surface.
//
// ## Infrastructure
//
// [cache] - Response and artifact caching with file, Redis, and null
// backends behind one interface.
//
// [config] - TOML configuration with environment overrides.
//
// [httputil] - Retry with exponential backoff for outbound HTTP.
//
// [errors] - Coded errors with user-facing messages and input validation.
//
// [observability] - Structured logging hooks for HTTP and cache activity.
//
// ## External Integrations
//
// [packing] - HTTP client for the packing service. Sends pack requests,
// retries transient failures, caches responses by request content, and
// converts results into viewer documents.
//
// ## Visualization
//
// [render/sink] - File output formats: isometric SVG with hover
// highlighting, JSON scene export, Graphviz scene diagrams, and plain-text
// summaries.
package pkg
