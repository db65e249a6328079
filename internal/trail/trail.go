// Package trail implements the decay, optional bloom, and render stages of
// §4.8: the exponentially-decaying phosphor trail, an optional 5×5 Gaussian
// bloom pass, and the fullscreen tone-mapped render that turns trail/vel/
// density/bloom buffers into a displayable image.
package trail

import (
	"math"
)

// Buffer is a W×H float32 accumulator.
type Buffer struct {
	W, H int
	Data []float32
}

// NewBuffer allocates a zeroed W×H buffer.
func NewBuffer(w, h int) Buffer {
	return Buffer{W: w, H: h, Data: make([]float32, w*h)}
}

func (b Buffer) at(x, y int) float32 {
	x = clampInt(x, 0, b.W-1)
	y = clampInt(y, 0, b.H-1)
	return b.Data[y*b.W+x]
}

// Decay applies trail[i] <- trail[i]*decay + density[i] in place. trail_buf
// is never cleared between frames, per §4.8.
func Decay(trail Buffer, density []int32, decay float32) {
	for i := range trail.Data {
		trail.Data[i] = trail.Data[i]*decay + float32(density[i])
	}
}

// HalfLifeFrames returns the steady-state half-life of the trail decay, in
// frames, for a given decay factor.
func HalfLifeFrames(decay float32) float32 {
	return float32(math.Log(0.5) / math.Log(float64(decay)))
}

// Bloom computes max(trail-threshold, 0) and blurs it with a separable 5×5
// Gaussian (sigma≈1.5) into bloomOut.
func Bloom(trail Buffer, threshold float32, bloomOut Buffer) {
	highlights := NewBuffer(trail.W, trail.H)
	for i, v := range trail.Data {
		highlights.Data[i] = maxF(v-threshold, 0)
	}

	kernel := gaussianKernel5(1.5)
	horiz := NewBuffer(trail.W, trail.H)
	for y := 0; y < trail.H; y++ {
		for x := 0; x < trail.W; x++ {
			var sum float32
			for k := -2; k <= 2; k++ {
				sum += highlights.at(x+k, y) * kernel[k+2]
			}
			horiz.Data[y*trail.W+x] = sum
		}
	}
	for y := 0; y < trail.H; y++ {
		for x := 0; x < trail.W; x++ {
			var sum float32
			for k := -2; k <= 2; k++ {
				sum += horiz.at(x, y+k) * kernel[k+2]
			}
			bloomOut.Data[y*trail.W+x] = sum
		}
	}
}

func gaussianKernel5(sigma float32) [5]float32 {
	var k [5]float32
	var sum float32
	for i := -2; i <= 2; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * float64(sigma*sigma))))
		k[i+2] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
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
