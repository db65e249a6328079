package ot

// PairIntraCluster implements §4.5.3: for each source atom, resolve its
// target cluster via mapping, then assign the next unused member of that
// target cluster, round-robin. An empty target cluster falls back to the
// matched centroid's own position (§4.5.4 failure policy) so the engine
// never fails on this edge condition.
//
// sourceLabels[i] is atom i's k-means label in [0,K). targetLabels[j] is
// the label of sampled target point j. mapping is the bijection produced
// by MatchCentroids. Returns one assigned position per source atom.
func PairIntraCluster(sourceLabels []int, targetLabels []int, targetPoints []Point, targetCentroids []Point, mapping []int) []Point {
	k := len(targetCentroids)
	pools := make([][]Point, k)
	for j, l := range targetLabels {
		pools[l] = append(pools[l], targetPoints[j])
	}

	cursors := make([]int, k)
	out := make([]Point, len(sourceLabels))
	for i, s := range sourceLabels {
		t := mapping[s]
		pool := pools[t]
		if len(pool) == 0 {
			out[i] = targetCentroids[t]
			continue
		}
		// Round-robin: cursor wraps via modulo, so it never exceeds
		// pool length without wrapping (invariant 9).
		out[i] = pool[cursors[t]%len(pool)]
		cursors[t]++
	}
	return out
}
