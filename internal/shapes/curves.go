package shapes

import "math"

// Tier 2: mathematical curves, attractors, and fractal-adjacent silhouettes.

// starGrid draws an n-pointed star using polar interpolation between outer
// and inner radius, generalising the reference's star(n_points) helper.
func starGrid(w, h, nPoints int) Grid {
	const cx, cy, rOuter, rInner = 0.5, 0.5, 0.38, 0.16
	g := newGrid(w, h)
	wedge := 2 * math.Pi / float64(nPoints)
	forEachCell(g, func(x, y int, u, v float32) {
		dx, dy := float64(u-cx), float64(v-cy)
		theta := math.Atan2(dy, dx)
		r := math.Sqrt(dx*dx + dy*dy)
		frac := math.Mod(theta, wedge)
		if frac < 0 {
			frac += wedge
		}
		frac /= wedge
		starR := rInner + (rOuter-rInner)*math.Abs(1.0-2.0*frac)
		if r < starR {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func star5Grid(w, h int) Grid { return starGrid(w, h, 5) }
func star6Grid(w, h int) Grid { return starGrid(w, h, 6) }

// heartGrid uses the algebraic implicit equation (x²+y²-1)³ - x²y³ < 0,
// remapped to the grid exactly as the reference does.
func heartGrid(w, h int) Grid {
	const cx, cy = 0.5, 0.52
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		px := float64(u-cx) * 2.8
		py := float64(cy-v) * 2.8
		lhs := math.Pow(px*px+py*py-1, 3) - px*px*py*py*py
		if lhs < 0 {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

// spiralGrid traces an Archimedean spiral of the given thickness.
func spiralGrid(w, h int) Grid {
	const cx, cy = 0.5, 0.5
	const rotations = 3.5
	const maxR = 0.42
	const thickness = 0.035
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		dx, dy := float64(u-cx), float64(v-cy)
		theta := math.Atan2(dy, dx)
		if theta < 0 {
			theta += 2 * math.Pi
		}
		r := math.Sqrt(dx*dx + dy*dy)
		// Expected radius of the spiral arm crossing this angle, across
		// every winding that reaches out to maxR.
		for winding := 0.0; winding < rotations+1; winding++ {
			armAngle := theta + winding*2*math.Pi
			expectedR := maxR * armAngle / (rotations * 2 * math.Pi)
			if expectedR > maxR {
				continue
			}
			if math.Abs(r-expectedR) < thickness {
				g.set(x, y, 1)
				break
			}
		}
	})
	return normalize(g, 1.5)
}

// roseGrid draws a rose curve r = cos(k·theta), k odd gives k petals.
func roseGrid(w, h int) Grid {
	const cx, cy = 0.5, 0.5
	const k = 5.0
	const scale = 0.4
	const thickness = 0.03
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		dx, dy := float64(u-cx), float64(v-cy)
		theta := math.Atan2(dy, dx)
		r := math.Sqrt(dx*dx + dy*dy)
		expected := scale * math.Max(math.Cos(k*theta), 0)
		if math.Abs(r-expected) < thickness {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

// lissajousGrid marks cells near a Lissajous curve x=sin(a t + delta),
// y=sin(b t), sampled densely and splatted as small dots.
func lissajousGrid(w, h int) Grid {
	const a, b = 3.0, 2.0
	const delta = math.Pi / 2
	const cx, cy, scale = 0.5, 0.5, 0.4
	const samples = 4000
	g := newGrid(w, h)
	for i := 0; i < samples; i++ {
		t := 2 * math.Pi * float64(i) / samples
		x := cx + scale*math.Sin(a*t+delta)
		y := cy + scale*math.Sin(b*t)
		px := int(x * float64(w))
		py := int(y * float64(h))
		splatDot(g, px, py, 1)
	}
	return normalize(g, 1.5)
}

// splatDot writes v into a small neighborhood around (px,py), clamped to
// the grid bounds.
func splatDot(g Grid, px, py int, v float32) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := px+dx, py+dy
			if x < 0 || x >= g.W || y < 0 || y >= g.H {
				continue
			}
			if v > g.at(x, y) {
				g.set(x, y, v)
			}
		}
	}
}
