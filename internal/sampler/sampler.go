// Package sampler implements the Sampler component: importance-sampling N
// 2D NDC positions from a density grid via an inverse-CDF lookup.
package sampler

import (
	"math/rand"
	"sort"
)

// SafeBox is the interior box used for the degenerate (all-zero density)
// fallback.
const SafeBox = 0.85

// DensityGrid is the minimal shape of a density field the sampler needs;
// satisfied by shapes.Grid without importing the shapes package.
type DensityGrid struct {
	W, H int
	Data []float32
}

// Position is an NDC (x,y) pair in [-1,+1]².
type Position struct {
	X, Y float32
}

// Sample draws n positions from grid via importance sampling. If the grid
// sums to zero, it returns n uniform random positions inside the safe
// interior box instead — the sampler never fails on a degenerate density.
func Sample(grid DensityGrid, n int, rng *rand.Rand) []Position {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	var total float64
	for _, v := range grid.Data {
		total += float64(v)
	}

	out := make([]Position, n)
	if total == 0 {
		for i := range out {
			out[i] = Position{
				X: float32(rng.Float64()*2-1) * SafeBox,
				Y: float32(rng.Float64()*2-1) * SafeBox,
			}
		}
		return out
	}

	cdf := make([]float64, len(grid.Data))
	var running float64
	for i, v := range grid.Data {
		running += float64(v)
		cdf[i] = running
	}

	for i := 0; i < n; i++ {
		u := rng.Float64() * total
		idx := sort.Search(len(cdf), func(k int) bool { return cdf[k] >= u })
		if idx >= len(cdf) {
			idx = len(cdf) - 1
		}
		row := idx / grid.W
		col := idx % grid.W

		jr := rng.Float64()
		jc := rng.Float64()
		rowf := float64(row) + jr
		colf := float64(col) + jc

		// Row 0 -> NDC y=-1 (bottom); column 0 -> NDC x=-1 (left).
		x := (colf/float64(grid.W))*2 - 1
		y := (rowf/float64(grid.H))*2 - 1
		out[i] = Position{X: float32(clamp(x, -1, 1)), Y: float32(clamp(y, -1, 1))}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
