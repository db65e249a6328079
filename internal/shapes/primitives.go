package shapes

import "math"

// Tier 1: geometric primitives.

func circleGrid(w, h int) Grid {
	const cx, cy, r = 0.5, 0.5, 0.36
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		dx, dy := u-cx, v-cy
		if dx*dx+dy*dy < r*r {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func ringGrid(w, h int) Grid {
	const cx, cy, r, width = 0.5, 0.5, 0.34, 0.08
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		dx, dy := u-cx, v-cy
		dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if dist > r-width/2 && dist < r+width/2 {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func squareGrid(w, h int) Grid {
	const cx, cy, half = 0.5, 0.5, 0.32
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		if absF(u-cx) < half && absF(v-cy) < half {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func diamondGrid(w, h int) Grid {
	const cx, cy, half = 0.5, 0.5, 0.36
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		if absF(u-cx)+absF(v-cy) < half {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func triangleGrid(w, h int) Grid {
	// Equilateral triangle, point up, inscribed in the unit square.
	apex := [2]float32{0.5, 0.86}
	left := [2]float32{0.16, 0.14}
	right := [2]float32{0.84, 0.14}
	g := newGrid(w, h)
	forEachCell(g, func(x, y int, u, v float32) {
		if insideTriangle(u, v, apex, left, right) {
			g.set(x, y, 1)
		}
	})
	return normalize(g, 1.5)
}

func insideTriangle(px, py float32, a, b, c [2]float32) bool {
	sign := func(p1, p2, p3 [2]float32) float32 {
		return (p1[0]-p3[0])*(p2[1]-p3[1]) - (p2[0]-p3[0])*(p1[1]-p3[1])
	}
	p := [2]float32{px, py}
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// forEachCell calls fn for every cell with u,v the cell center in [0,1]².
func forEachCell(g Grid, fn func(x, y int, u, v float32)) {
	for y := 0; y < g.H; y++ {
		v := (float32(y) + 0.5) / float32(g.H)
		for x := 0; x < g.W; x++ {
			u := (float32(x) + 0.5) / float32(g.W)
			fn(x, y, u, v)
		}
	}
}
