// Package splat implements the per-atom density/velocity splatting kernel
// (§4.7): each atom's position and speed are scattered into a 3×3 pixel
// neighborhood with separable Gaussian weights, accumulated in fixed point
// so that vel_buf/(density_buf·65535) recovers a weighted-average
// normalized speed.
package splat

import "math"

// FixedPointScale is the fixed-point total (per atom, summed across its
// footprint) that a full weight of 1.0 maps to, per §4.7 ("weights sum to
// ≈256 in fixed point").
const FixedPointScale = 256

// sigma is the Gaussian splat radius in pixels, per §4.7.
const sigma = 0.707

// Grid is a W×H fixed-point accumulator buffer. Density uses int32 so the
// CPU reference is faithful to the WGSL atomic<i32> accumulator; velocity
// uses int64 since u·weight can exceed int32 range for dense splats.
type Grid struct {
	W, H    int
	Density []int32
	Vel     []int64
}

// NewGrid allocates a zeroed W×H splat target.
func NewGrid(w, h int) Grid {
	return Grid{W: w, H: h, Density: make([]int32, w*h), Vel: make([]int64, w*h)}
}

// Clear zeroes both accumulators; invariant 2 requires this happen at the
// start of every frame before splatting.
func (g Grid) Clear() {
	for i := range g.Density {
		g.Density[i] = 0
	}
	for i := range g.Vel {
		g.Vel[i] = 0
	}
}

// Splat scatters one atom's density and speed contribution into g.
// position is in NDC [-1,1]^2; velocity magnitude is normalized against
// maxVel per §4.7's `s = clamp(|velocity|/MAX_VEL, 0, 1)`.
func Splat(g Grid, position Vec2, velocity Vec2, maxVel float32) {
	px := (position.X + 1) * 0.5 * float32(g.W)
	py := (1 - (position.Y+1)*0.5) * float32(g.H) // row 0 -> y=+1 (top of the image), the reverse of the sampler's row order

	speed := float32(math.Hypot(float64(velocity.X), float64(velocity.Y)))
	s := clampF(speed/maxVel, 0, 1)
	u := int64(s * 65535)

	weights := footprintWeights(px, py)
	for _, w := range weights {
		if w.x < 0 || w.x >= g.W || w.y < 0 || w.y >= g.H {
			continue
		}
		idx := w.y*g.W + w.x
		g.Density[idx] += int32(w.fixed)
		g.Vel[idx] += u * int64(w.fixed)
	}
}

// Vec2 is a 2D position or velocity.
type Vec2 struct{ X, Y float32 }

type weightedCell struct {
	x, y  int
	fixed int32
}

// footprintWeights computes the 3×3 separable Gaussian footprint around the
// continuous pixel coordinate (px,py), in fixed point scaled to
// FixedPointScale.
func footprintWeights(px, py float32) [9]weightedCell {
	cx, fx := int(math.Floor(float64(px))), px-float32(math.Floor(float64(px)))
	cy, fy := int(math.Floor(float64(py))), py-float32(math.Floor(float64(py)))

	wx := gaussian1D(fx)
	wy := gaussian1D(fy)

	var out [9]weightedCell
	i := 0
	for oy := -1; oy <= 1; oy++ {
		for ox := -1; ox <= 1; ox++ {
			w2d := wx[ox+1] * wy[oy+1]
			out[i] = weightedCell{x: cx + ox, y: cy + oy, fixed: int32(math.Round(float64(w2d) * FixedPointScale))}
			i++
		}
	}
	return out
}

// gaussian1D returns the three normalized weights for offsets {-1,0,1} from
// the pixel center at cx, given the sub-pixel fraction frac into [cx,cx+1).
func gaussian1D(frac float32) [3]float32 {
	var w [3]float32
	var sum float32
	for i, o := range [3]float32{-1, 0, 1} {
		d := float64(o - frac)
		w[i] = float32(math.Exp(-d * d / (2 * sigma * sigma)))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizedSpeed recovers the weighted-average normalized speed at pixel
// (x,y), implementing the §4.7 invariant. Returns 0 where density is zero.
func NormalizedSpeed(g Grid, x, y int) float32 {
	idx := y*g.W + x
	d := g.Density[idx]
	if d == 0 {
		return 0
	}
	return float32(g.Vel[idx]) / (float32(d) * 65535)
}
