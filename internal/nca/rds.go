package nca

import "math/rand"

const rdsNoiseAmplitude = 0.08

type rdsEngine struct {
	steps int
}

// Run implements §4.3.2: seed as clamp(goal+noise, 0, 1), then iterate the
// reaction-diffusion update. The resulting field is the alpha buffer
// directly (no channel-0 extraction — this back-end is single-channel).
func (e *rdsEngine) Run(goal Grid) Grid {
	rng := rand.New(rand.NewSource(fixedSeed(goal)))

	cur := NewGrid(goal.W, goal.H)
	for i, g := range goal.Data {
		noise := float32(rng.Float64()*2-1) * rdsNoiseAmplitude
		cur.Data[i] = clampF(g+noise, 0, 1)
	}

	next := NewGrid(goal.W, goal.H)
	for step := 0; step < e.steps; step++ {
		rdsStep(cur, next, goal)
		cur, next = next, cur
	}
	return cur
}

// fixedSeed derives a deterministic RNG seed from the goal grid's
// dimensions and content so that Run is reproducible for a given goal,
// matching the "deterministic, no external RNG buffer" spirit used
// throughout §4.3 even though this back-end legitimately needs noise.
func fixedSeed(goal Grid) int64 {
	var acc int64 = int64(goal.W)*31 + int64(goal.H)
	for i, v := range goal.Data {
		acc = acc*1000003 + int64(v*1e6) + int64(i)
	}
	return acc
}

func rdsStep(cur, next, goal Grid) {
	w, h := goal.W, goal.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := cur.at(x, y)
			g := goal.at(x, y)
			avg := neighborAvg(cur, x, y)
			laplacian := avg - s
			reaction := s * (1 - s) * g
			goalPull := 0.04 * (g - s)
			updated := s + 0.15*laplacian + 0.10*reaction + goalPull
			next.Data[y*w+x] = clampF(updated, 0, 1)
		}
	}
}

// neighborAvg computes the 3×3 Gaussian-weighted neighbor average
// (center excluded) from §4.3.2, weights 1/12, 2/12, 1/12 on each row.
func neighborAvg(g Grid, x, y int) float32 {
	const corner = float32(1) / 12
	const edge = float32(2) / 12
	return corner*g.at(x-1, y-1) + edge*g.at(x, y-1) + corner*g.at(x+1, y-1) +
		edge*g.at(x-1, y) + edge*g.at(x+1, y) +
		corner*g.at(x-1, y+1) + edge*g.at(x, y+1) + corner*g.at(x+1, y+1)
}
