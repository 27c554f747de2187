// Package nodelink renders the link structure of a solved layout as a
// node-link diagram using Graphviz.
//
// # Overview
//
// Cartogram links join regions that share a border. Drawing them as a
// plain graph, with every node pinned at its solved position, shows which
// constraints the force solver balanced and where circles were pushed away
// from their neighbors.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source uses the neato engine with pinned positions ("x,y!"), so
// it can also be fed to external tools with `neato -n`.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
