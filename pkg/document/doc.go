// Package document defines the packing-result document consumed by the viewer.
//
// A document is the single input contract of the rendering core: it describes
// one container, the items the packing service placed inside it, and the items
// it could not place. Documents are immutable once decoded; a new document
// fully replaces the previous one (there is no incremental patch model).
//
// # Wire Shape
//
// Documents arrive as JSON produced by the external packing service:
//
//	{
//	  "container": {"width": 10, "height": 5, "depth": 5, "color": "#8B4513"},
//	  "items": [
//	    {"id": "a", "name": "Box A", "dimensions": [2,2,2],
//	     "position": [0,0,0], "rotation": [0,0,90], "color": "#FF0000"}
//	  ],
//	  "unpacked_items": [
//	    {"id": "b", "name": "Box B", "dimensions": [9,9,9],
//	     "color": "red", "reason": "exceeds container bounds"}
//	  ]
//	}
//
// Missing optional fields take documented defaults: rotation [0,0,0], color
// the default item color, ids are synthesized. Items missing their dimensions
// or position arrays are retained but flagged, so the scene synchronizer can
// skip them with a diagnostic count instead of failing the whole document.
//
// # Identity
//
// Each decoded document carries a content fingerprint (SHA-256 of its wire
// form) computed once at ingestion. Consumers compare fingerprints to detect
// unchanged documents instead of re-serializing and deep-comparing structures.
package document
