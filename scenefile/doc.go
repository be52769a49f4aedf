// Package scenefile reads softrast scenes from YAML or TOML documents.
//
// A document names the logical canvas size and an ordered list of elements:
//
//	width: 200
//	height: 200
//	elements:
//	  - type: rect
//	    position: [20, 20]
//	    dimension: [80, 40]
//	    fill: "#cc3333"
//	    stroke: "#000"
//	  - type: group
//	    translate: [100, 100]
//	    rotate: 30
//	    elements:
//	      - type: polygon
//	        points: [[0, 0], [40, 0], [20, 30]]
//	        fill: "#3366ccaa"
//
// Element types are point, line, polyline, rect, polygon, ellipse, image and
// group. Unknown types are skipped. Every element accepts either a full
// affine transform [a, b, c, d, e, f] or any of translate, rotate (degrees)
// and scale, applied in that order. Missing colors mean "none".
//
// Image elements reference their texture with href, resolved relative to
// the document. PNG, JPEG, GIF, BMP, TIFF and WebP textures are supported.
package scenefile
