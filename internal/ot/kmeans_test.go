package ot

import (
	"math"
	"math/rand"
	"testing"
)

// Invariant 7: every atom has exactly one label in [0,K); centroid updates
// are idempotent at a fixed point of the assignments.
func TestKMeansLabelsInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points := make([]Point, 2000)
	for i := range points {
		points[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
	}
	const k = 16
	res := KMeans(points, k, 6)
	if len(res.Labels) != len(points) {
		t.Fatalf("got %d labels, want %d", len(res.Labels), len(points))
	}
	for i, l := range res.Labels {
		if l < 0 || l >= k {
			t.Fatalf("point %d has label %d out of [0,%d)", i, l, k)
		}
	}
}

func TestKMeansIdempotentAtFixedPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	points := make([]Point, 500)
	for i := range points {
		points[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
	}
	const k = 8
	res := KMeans(points, k, 20) // enough iterations to reach a fixed point
	// One more assign/divide round from the converged centroids should
	// reproduce the same centroids.
	labels2 := make([]int, len(points))
	assign(points, res.Centroids, labels2)
	centroids2 := divide(points, labels2, res.Centroids, k)
	for c := range res.Centroids {
		if dist2(res.Centroids[c], centroids2[c]) > 1e-8 {
			t.Fatalf("centroid %d not stable at fixed point: %v -> %v", c, res.Centroids[c], centroids2[c])
		}
	}
}

// S5: for a synthetic cloud of K well-separated Gaussian blobs, after
// ITER=6 iterations the label assignment matches the ground-truth blob id
// for >=99% of points.
func TestKMeansConvergesOnSeparatedBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const k = 6
	const perBlob = 500
	centers := make([]Point, k)
	for i := range centers {
		theta := 2 * math.Pi * float64(i) / float64(k)
		centers[i] = Point{X: float32(0.7 * math.Cos(theta)), Y: float32(0.7 * math.Sin(theta))}
	}

	var points []Point
	truth := make([]int, 0, k*perBlob)
	for b, c := range centers {
		for j := 0; j < perBlob; j++ {
			points = append(points, Point{
				X: c.X + float32(rng.NormFloat64()*0.03),
				Y: c.Y + float32(rng.NormFloat64()*0.03),
			})
			truth = append(truth, b)
		}
	}

	res := KMeans(points, k, 6)

	// k-means labels are a permutation of blob ids; recover the
	// permutation via majority vote per label, then score agreement.
	labelToBlob := make(map[int]int)
	counts := make([]map[int]int, k)
	for i := range counts {
		counts[i] = make(map[int]int)
	}
	for i, l := range res.Labels {
		counts[l][truth[i]]++
	}
	for l, m := range counts {
		best, bestN := -1, -1
		for blob, n := range m {
			if n > bestN {
				best, bestN = blob, n
			}
		}
		labelToBlob[l] = best
	}

	correct := 0
	for i, l := range res.Labels {
		if labelToBlob[l] == truth[i] {
			correct++
		}
	}
	ratio := float64(correct) / float64(len(points))
	if ratio < 0.99 {
		t.Fatalf("label agreement %.4f < 0.99", ratio)
	}
}

func TestMatchCentroidsIsBijection(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const k = 32
	source := make([]Point, k)
	target := make([]Point, k)
	for i := range source {
		source[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
		target[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
	}
	mapping := MatchCentroids(source, target)
	if len(mapping) != k {
		t.Fatalf("mapping length %d, want %d", len(mapping), k)
	}
	seen := make(map[int]bool)
	for _, t2 := range mapping {
		if t2 < 0 || t2 >= k {
			t.Fatalf("mapping value %d out of range", t2)
		}
		if seen[t2] {
			t.Fatalf("mapping is not injective: target %d assigned twice", t2)
		}
		seen[t2] = true
	}
}

func TestPairIntraClusterHandlesEmptyCluster(t *testing.T) {
	// Two source atoms both labeled 0, mapping 0 -> target cluster 1,
	// which has zero members -> falls back to the centroid position.
	sourceLabels := []int{0, 0}
	targetLabels := []int{0, 0} // all target points in cluster 0
	targetPoints := []Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}
	targetCentroids := []Point{{X: 0, Y: 0}, {X: 9, Y: 9}}
	mapping := []int{1, 0} // source cluster 0 -> target cluster 1 (empty)

	out := PairIntraCluster(sourceLabels, targetLabels, targetPoints, targetCentroids, mapping)
	if len(out) != 2 {
		t.Fatalf("got %d outputs, want 2", len(out))
	}
	for _, p := range out {
		if p != targetCentroids[1] {
			t.Fatalf("expected fallback to centroid %v, got %v", targetCentroids[1], p)
		}
	}
}

func TestPairIntraClusterRoundRobinsWithoutOverrun(t *testing.T) {
	sourceLabels := make([]int, 100)
	targetLabels := []int{0, 0, 0}
	targetPoints := []Point{{X: 1}, {X: 2}, {X: 3}}
	targetCentroids := []Point{{X: 0, Y: 0}}
	mapping := []int{0}

	out := PairIntraCluster(sourceLabels, targetLabels, targetPoints, targetCentroids, mapping)
	for i, p := range out {
		want := targetPoints[i%len(targetPoints)]
		if p != want {
			t.Fatalf("atom %d: got %v, want round-robin %v", i, p, want)
		}
	}
}

func TestAssignEveryAtomGetsTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 300
	source := make([]Point, n)
	target := make([]Point, n)
	for i := range source {
		source[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
		target[i] = Point{X: float32(rng.Float64()*2 - 1), Y: float32(rng.Float64()*2 - 1)}
	}
	out := Assign(source, target, 8, 6)
	if len(out) != n {
		t.Fatalf("got %d assignments, want %d", len(out), n)
	}
}
