// Package dataset loads the inputs of both charts: polygon features for
// the cartogram (GeoJSON) and labeled numeric records for the bubble chart
// (CSV).
//
// Features keep their coordinates as given; [Project] and [Fit] move
// longitude/latitude data into canvas space. [Neighbors] derives the
// adjacency the cartogram turns into links.
package dataset
