// Package ot implements the OT Engine (§4.5): hierarchical k-means,
// centroid-level matching, and intra-cluster round-robin pairing, used to
// approximate the bipartite optimal-transport assignment from source atoms
// to sampled target positions.
package ot

// Point is a 2D NDC position.
type Point struct {
	X, Y float32
}

func dist2(a, b Point) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
