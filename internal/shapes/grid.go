package shapes

import "math"

// Grid is a row-major W×H density field in [0,1]. Row 0 is NDC y=-1
// (bottom); column 0 is NDC x=-1 (left), matching the Sampler's mapping.
type Grid struct {
	W, H int
	Data []float32
}

func newGrid(w, h int) Grid {
	return Grid{W: w, H: h, Data: make([]float32, w*h)}
}

func (g Grid) at(x, y int) float32 {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return 0
	}
	return g.Data[y*g.W+x]
}

func (g Grid) set(x, y int, v float32) {
	g.Data[y*g.W+x] = v
}

// normalize applies a separable Gaussian blur of standard deviation sigma
// (in grid cells) and rescales the result to [0,1]. Matches the reference's
// _normalise(arr, blur_sigma): smooth edges so the sampler sees gradients
// instead of hard boundaries.
func normalize(g Grid, sigma float32) Grid {
	blurred := gaussianBlur(g, sigma)
	lo, hi := blurred.Data[0], blurred.Data[0]
	for _, v := range blurred.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span < 1e-6 {
		return blurred
	}
	out := newGrid(g.W, g.H)
	for i, v := range blurred.Data {
		out.Data[i] = (v - lo) / span
	}
	return out
}

// gaussianBlur performs a separable 1D Gaussian convolution along rows then
// columns with clamped (edge-replicated) borders.
func gaussianBlur(g Grid, sigma float32) Grid {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	tmp := newGrid(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				xc := clampInt(x+k, 0, g.W-1)
				sum += g.at(xc, y) * kernel[k+radius]
			}
			tmp.set(x, y, sum)
		}
	}

	out := newGrid(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				yc := clampInt(y+k, 0, g.H-1)
				sum += tmp.at(x, yc) * kernel[k+radius]
			}
			out.set(x, y, sum)
		}
	}
	return out
}

func gaussianKernel(sigma float32) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	radius := int(math.Ceil(float64(sigma) * 3))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, 2*radius+1)
	var sum float32
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * float64(sigma) * float64(sigma))))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
