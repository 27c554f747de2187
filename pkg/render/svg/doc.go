// Package svg writes charts as SVG documents using [github.com/ajstarks/svgo].
//
// Cartograms are written either as a single frame of the shape-to-circle
// morph ([RenderCartogramFrame]) or as a self-running SMIL animation that
// morphs every shape into its circle, holds, and morphs back
// ([RenderCartogramAnimation]). Bubble chart snapshots are written with
// [RenderBubbles].
package svg
