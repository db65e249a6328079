package nca

import "math"

type mlpEngine struct {
	weights  *Weights
	steps    int
	fireRate float32
}

// state is the ping-ponged 16-channel×W×H field, channel-major flattened as
// state[c*w*h + y*w + x].
type state struct {
	w, h int
	data []float32
}

func newState(w, h int) state {
	return state{w: w, h: h, data: make([]float32, stateDim*w*h)}
}

func (s state) at(c, x, y int) float32 {
	x = clampInt(x, 0, s.w-1)
	y = clampInt(y, 0, s.h-1)
	return s.data[c*s.w*s.h+y*s.w+x]
}

func (s state) set(c, x, y int, v float32) {
	s.data[c*s.w*s.h+y*s.w+x] = v
}

// Run implements §4.3.1: seed state to zero, run Steps iterations of the
// perceive/goal/MLP/mask/update rule, extract channel 0 into an alpha grid.
func (e *mlpEngine) Run(goal Grid) Grid {
	cur := newState(goal.W, goal.H)
	next := newState(goal.W, goal.H)

	for step := 0; step < e.steps; step++ {
		e.stepOnce(cur, next, goal, step)
		cur, next = next, cur
	}

	out := NewGrid(goal.W, goal.H)
	for y := 0; y < goal.H; y++ {
		for x := 0; x < goal.W; x++ {
			out.Data[y*goal.W+x] = clampF(cur.at(0, x, y), 0, 1)
		}
	}
	return out
}

func (e *mlpEngine) stepOnce(cur, next state, goal Grid, step int) {
	var perception [perceptFeatures]float32
	var features [inputDim]float32
	var hidden [hiddenDim]float32
	var delta [stateDim]float32

	w, h := goal.W, goal.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			perceive(cur, x, y, perception[:])
			copy(features[:perceptFeatures], perception[:])
			goalFeatureVector(goal.at(x, y), features[perceptFeatures:])

			for i := 0; i < hiddenDim; i++ {
				sum := e.weights.B1[i]
				row := e.weights.W1[i*inputDim : i*inputDim+inputDim]
				for j, f := range features {
					sum += row[j] * f
				}
				hidden[i] = reluF(sum)
			}

			for i := 0; i < stateDim; i++ {
				sum := e.weights.B2[i]
				row := e.weights.W2[i*hiddenDim : i*hiddenDim+hiddenDim]
				for j, hv := range hidden {
					sum += row[j] * hv
				}
				delta[i] = sum
			}

			mask := float32(0)
			if cellFires(x, y, step, e.fireRate) {
				mask = 1
			}

			for c := 0; c < stateDim; c++ {
				updated := cur.at(c, x, y) + delta[c]*mask
				next.set(c, x, y, clampF(updated, -1, 1))
			}
		}
	}
}

// perceive computes, for each of the 16 state channels, the identity,
// Sobel-X/8 and Sobel-Y/8 responses at (x,y), writing 48 features in
// channel-major [identity..., sobelX..., sobelY...] order.
func perceive(s state, x, y int, out []float32) {
	for c := 0; c < stateDim; c++ {
		out[c] = s.at(c, x, y)
	}
	for c := 0; c < stateDim; c++ {
		out[stateDim+c] = sobelX(s, c, x, y)
	}
	for c := 0; c < stateDim; c++ {
		out[2*stateDim+c] = sobelY(s, c, x, y)
	}
}

func sobelX(s state, c, x, y int) float32 {
	return (-s.at(c, x-1, y-1) + s.at(c, x+1, y-1) +
		-2*s.at(c, x-1, y) + 2*s.at(c, x+1, y) +
		-s.at(c, x-1, y+1) + s.at(c, x+1, y+1)) / 8
}

func sobelY(s state, c, x, y int) float32 {
	return (-s.at(c, x-1, y-1) - 2*s.at(c, x, y-1) - s.at(c, x+1, y-1) +
		s.at(c, x-1, y+1) + 2*s.at(c, x, y+1) + s.at(c, x+1, y+1)) / 8
}

// goalFeatureVector computes the 8 deterministic goal features from §4.3.1
// step 2: g, g², 1−g, sin(πg), cos(2πg), √g, 4g(1−g), 1[g>0.5].
func goalFeatureVector(g float32, out []float32) {
	gf := float64(g)
	out[0] = g
	out[1] = g * g
	out[2] = 1 - g
	out[3] = float32(math.Sin(math.Pi * gf))
	out[4] = float32(math.Cos(2 * math.Pi * gf))
	out[5] = float32(math.Sqrt(math.Max(gf, 0)))
	out[6] = 4 * g * (1 - g)
	if g > 0.5 {
		out[7] = 1
	} else {
		out[7] = 0
	}
}

func reluF(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

// cellFires derives the stochastic update mask deterministically from a
// hash of (x, y, step) rather than an external RNG stream, per §4.3.1 step 5.
func cellFires(x, y, step int, fireRate float32) bool {
	h := hashCell(x, y, step)
	// Map the top 24 bits of the hash to [0,1) uniformly.
	u := float32(h>>40) / float32(1<<24)
	return u < fireRate
}

// hashCell mixes (x,y,step) with a splitmix64-style finalizer. No
// third-party hash library in the example corpus demonstrates this kind of
// small fixed-input integer mix (xxhash appears only as an indirect,
// transitive dependency elsewhere in the pack, never invoked directly for
// anything like this) — stdlib bit arithmetic is the right tool.
func hashCell(x, y, step int) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xBF58476D1CE4E5B9 ^ uint64(step)*0x94D049BB133111EB
	v ^= v >> 30
	v *= 0xBF58476D1CE4E5B9
	v ^= v >> 27
	v *= 0x94D049BB133111EB
	v ^= v >> 31
	return v
}
