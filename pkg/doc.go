// Package pkg provides the core libraries for Cartoforce force-directed
// charts.
//
// # Overview
//
// Cartoforce lays out two kinds of chart with one force simulation. A
// cartogram turns every region of a map into a circle sized by a value,
// pulled toward where the region was, linked to its neighbors and kept
// from overlapping; each outline then morphs into its circle and back. A
// bubble chart sizes records by value and regroups them as the reader
// scrolls through steps. The pkg directory is organized into these areas:
//
//  1. [force] - d3-style velocity Verlet simulation and its forces
//  2. [geom], [morph] - outline resampling and shape interpolation
//  3. [dataset] - GeoJSON and CSV input, projection and adjacency
//  4. [scene] - TOML scene configuration and scroll steps
//  5. [pipeline] - Orchestration (ingest → solve → render)
//  6. [render] - SVG, Graphviz, PNG and PDF output
//  7. [layout] - Serialization types for solved layouts
//  8. [cache], [httputil], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow of a cartogram:
//
//	GeoJSON file or URL
//	         ↓
//	    [dataset] package (features, projection, neighbors)
//	         ↓
//	    [force] package (links + collide + anchors to convergence)
//	         ↓
//	    [morph] package (outline ↔ circle interpolators)
//	         ↓
//	    [render/svg] package (frames and SMIL animation)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
//	features, _ := dataset.ReadFeaturesFile("states.geojson", dataset.FeatureOptions{NameProperty: "name"})
//	runner := pipeline.NewRunner(nil)
//	cycle, _ := runner.Cartogram(ctx, features, pipeline.Options{})
//	artifacts, _ := runner.RenderCartogram(ctx, cycle, pipeline.Options{Formats: []string{"svg", "json"}})
package pkg
