// Package nca implements the Goal-Guided Neural Cellular Automata engine
// (§4.3): a grid update rule that drives a 16-channel state field toward a
// goal density, with an MLP back-end when trained weights are available and
// a reaction-diffusion fallback otherwise.
package nca

// Engine runs the NCA step function and extracts an alpha grid from a goal
// density. The concrete back-end (MLP or RDS) is selected once, at
// construction, and fixed for the process lifetime — a tagged variant, not
// an inheritance hierarchy.
type Engine interface {
	// Run executes Steps iterations starting from the seed state implied by
	// goal, returning a W×H alpha grid with values in [0,1].
	Run(goal Grid) Grid
}

// Grid is a flattened W×H scalar field in row-major order.
type Grid struct {
	W, H int
	Data []float32
}

// NewGrid allocates a zeroed W×H grid.
func NewGrid(w, h int) Grid {
	return Grid{W: w, H: h, Data: make([]float32, w*h)}
}

func (g Grid) at(x, y int) float32 {
	x = clampInt(x, 0, g.W-1)
	y = clampInt(y, 0, g.H-1)
	return g.Data[y*g.W+x]
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

// New selects the MLP back-end when w is non-nil (i.e. weight loading
// succeeded), otherwise the RDS fallback. Selection happens once and is
// never revisited — matching the fixed-for-process-lifetime rule in §4.3.3.
func New(w *Weights, steps int, fireRate float32) Engine {
	if w != nil {
		return &mlpEngine{weights: w, steps: steps, fireRate: fireRate}
	}
	return &rdsEngine{steps: steps}
}
