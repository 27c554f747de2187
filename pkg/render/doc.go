// Package render turns solved charts into files.
//
// # Overview
//
// Rendering is split by concern:
//
//   - [palette]: radius and color scales (square-root scales, two-color
//     ramps, the Spectral scheme)
//   - [timeline]: easing functions and the keyframes of the cartogram's
//     morph schedule
//   - [svg]: SVG documents for cartogram frames, cartogram animations and
//     bubble chart snapshots
//   - [nodelink]: Graphviz diagrams of cartogram adjacency links
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any static SVG to other formats
// using the external rsvg-convert tool (from librsvg). Animated SVGs are
// converted at their resting frame.
//
//	frame := svg.RenderCartogramFrame(c, 1)
//	png, err := render.ToPNG(frame, 2.0) // 2x scale
package render
