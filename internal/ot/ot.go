package ot

// Assign runs the full OT pipeline (§4.5): k-means on both source and
// target clouds, centroid-level matching, and intra-cluster pairing. It
// returns one assigned target position per source point and never fails:
// empty clusters and degenerate (e.g. all-random) target clouds are
// handled by the failure policy in §4.5.4.
func Assign(source, target []Point, k, iters int) []Point {
	srcKM := KMeans(source, k, iters)
	tgtKM := KMeans(target, k, iters)
	mapping := MatchCentroids(srcKM.Centroids, tgtKM.Centroids)
	return PairIntraCluster(srcKM.Labels, tgtKM.Labels, target, tgtKM.Centroids, mapping)
}
