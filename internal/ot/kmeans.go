package ot

// KMeansResult holds the converged centroids and per-point labels.
type KMeansResult struct {
	Centroids []Point
	Labels    []int // len(points); label[i] in [0,K)
}

// KMeans is the CPU reference for §4.5.1: seed K evenly-spaced centroids
// from the input, then iterate assign/accumulate/divide for iters rounds,
// finishing with a final assign pass. It is the GPU-free twin of the WGSL
// dispatcher in kmeans_gpu.go and is what the testable properties (S5,
// invariant 7) are checked against.
//
// The CPU reference accumulates in float64 rather than the GPU path's
// fixed-point integer atomics — both converge to the same labeling at a
// fixed point of the assignment, which is what invariant 7 requires.
func KMeans(points []Point, k, iters int) KMeansResult {
	n := len(points)
	centroids := seedCentroids(points, k)
	labels := make([]int, n)

	for iter := 0; iter < iters; iter++ {
		assign(points, centroids, labels)
		centroids = divide(points, labels, centroids, k)
	}
	// Final assign pass writes converged labels against the last
	// centroid update.
	assign(points, centroids, labels)

	return KMeansResult{Centroids: centroids, Labels: labels}
}

// seedCentroids picks k evenly-spaced positions from points, per §4.5.1.
func seedCentroids(points []Point, k int) []Point {
	n := len(points)
	centroids := make([]Point, k)
	if n == 0 {
		return centroids
	}
	for i := 0; i < k; i++ {
		idx := (i * n) / k
		centroids[i] = points[idx]
	}
	return centroids
}

// assign sets labels[i] = argmin_k ||points[i] - centroids[k]||^2.
func assign(points []Point, centroids []Point, labels []int) {
	for i, p := range points {
		best := 0
		bestD := dist2(p, centroids[0])
		for k := 1; k < len(centroids); k++ {
			d := dist2(p, centroids[k])
			if d < bestD {
				bestD = d
				best = k
			}
		}
		labels[i] = best
	}
}

// divide recomputes each centroid as the mean of its assigned points;
// clusters with zero members retain their previous centroid.
func divide(points []Point, labels []int, prev []Point, k int) []Point {
	sumX := make([]float64, k)
	sumY := make([]float64, k)
	counts := make([]int, k)
	for i, p := range points {
		l := labels[i]
		sumX[l] += float64(p.X)
		sumY[l] += float64(p.Y)
		counts[l]++
	}
	out := make([]Point, k)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			out[c] = Point{
				X: float32(sumX[c] / float64(counts[c])),
				Y: float32(sumY[c] / float64(counts[c])),
			}
		} else {
			out[c] = prev[c]
		}
	}
	return out
}
