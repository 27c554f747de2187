// Package layout is the serializable form of a solved chart.
//
// # JSON Format
//
// A layout document describes one solved cycle of either chart:
//
//	{
//	  "id": "6f1c...",
//	  "kind": "cartogram",
//	  "width": 960,
//	  "height": 600,
//	  "ticks": 100,
//	  "nodes": [
//	    {"id": "CA", "name": "California", "x": 120.5, "y": 310.2, "r": 44.1,
//	     "fill": "#5e4fa2", "path": "M ... Z", "circle": "M ... Z"}
//	  ],
//	  "links": [{"source": 0, "target": 3, "distance": 51.2}],
//	  "skipped": [{"id": "PR", "code": "INVALID_GEOMETRY", "message": "..."}]
//	}
//
// Bubble chart layouts carry a step name, category and value per node, the
// highlight and label flags of that step, and category labels.
//
// Documents written with [WriteJSON] round-trip through [ReadJSON].
package layout
