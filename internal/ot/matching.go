package ot

import (
	"math"
	"sort"
)

// MatchCentroids implements §4.5.2: compute each cloud's centroid-of-
// centroids, sort both clouds' centroids by polar angle around that point,
// and pair by rank. The result is injective (a bijection on [0,K)) per
// invariant 8.
func MatchCentroids(source, target []Point) []int {
	k := len(source)
	srcOrder := sortByAngle(source)
	tgtOrder := sortByAngle(target)

	mapping := make([]int, k)
	for rank := 0; rank < k; rank++ {
		mapping[srcOrder[rank]] = tgtOrder[rank]
	}
	return mapping
}

// sortByAngle returns the indices of pts sorted by polar angle around
// their centroid-of-centroids, ties broken by index for determinism.
func sortByAngle(pts []Point) []int {
	center := centroidOf(pts)
	idx := make([]int, len(pts))
	angle := make([]float64, len(pts))
	for i, p := range pts {
		idx[i] = i
		angle[i] = math.Atan2(float64(p.Y-center.Y), float64(p.X-center.X))
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if angle[ia] != angle[ib] {
			return angle[ia] < angle[ib]
		}
		return ia < ib
	})
	return idx
}

func centroidOf(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(pts))
	return Point{X: float32(sx / n), Y: float32(sy / n)}
}
