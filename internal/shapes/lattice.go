package shapes

import "math"

// Tier 3: molecular / lattice structures.

// hexLatticeGrid splats a soft blob at every vertex of a hexagonal
// (triangular) lattice inscribed in the grid.
func hexLatticeGrid(w, h int) Grid {
	const spacing = 0.11
	const blobR = 0.018
	g := newGrid(w, h)
	rowHeight := spacing * math.Sqrt(3) / 2
	row := 0
	for y := 0.05; y < 0.95; y += rowHeight {
		offset := 0.0
		if row%2 == 1 {
			offset = spacing / 2
		}
		for x := 0.05 + offset; x < 0.95; x += spacing {
			splatBlob(g, w, h, x, y, blobR)
		}
		row++
	}
	return normalize(g, 1.5)
}

// benzeneGrid draws a six-membered carbon ring: atoms as blobs at hexagon
// vertices, bonds as thin lines between adjacent vertices.
func benzeneGrid(w, h int) Grid {
	const cx, cy, r = 0.5, 0.5, 0.3
	const blobR = 0.03
	g := newGrid(w, h)
	verts := make([][2]float64, 6)
	for i := range verts {
		theta := float64(i) * math.Pi / 3
		verts[i] = [2]float64{cx + r*math.Cos(theta), cy + r*math.Sin(theta)}
	}
	for i, v := range verts {
		splatBlob(g, w, h, v[0], v[1], blobR)
		next := verts[(i+1)%len(verts)]
		drawLine(g, w, h, v[0], v[1], next[0], next[1], 0.012)
	}
	return normalize(g, 1.5)
}

// cubicLatticeGrid splats blobs at a regular square-grid lattice, the 2D
// projection of a cubic crystal lattice.
func cubicLatticeGrid(w, h int) Grid {
	const spacing = 0.12
	const blobR = 0.02
	g := newGrid(w, h)
	for y := 0.08; y < 0.95; y += spacing {
		for x := 0.08; x < 0.95; x += spacing {
			splatBlob(g, w, h, x, y, blobR)
		}
	}
	return normalize(g, 1.5)
}

// splatBlob writes a soft disc of radius blobR (in [0,1]² units) centered
// at (cx,cy), taking the max with any existing value.
func splatBlob(g Grid, w, h int, cx, cy, blobR float64) {
	minX := clampInt(int((cx-blobR)*float64(w)), 0, w-1)
	maxX := clampInt(int((cx+blobR)*float64(w)), 0, w-1)
	minY := clampInt(int((cy-blobR)*float64(h)), 0, h-1)
	maxY := clampInt(int((cy+blobR)*float64(h)), 0, h-1)
	for y := minY; y <= maxY; y++ {
		v := (float64(y) + 0.5) / float64(h)
		for x := minX; x <= maxX; x++ {
			u := (float64(x) + 0.5) / float64(w)
			d := math.Sqrt((u-cx)*(u-cx) + (v-cy)*(v-cy))
			if d < blobR {
				val := float32(1 - d/blobR)
				if val > g.at(x, y) {
					g.set(x, y, val)
				}
			}
		}
	}
}

// drawLine splats a thin line segment between two points, in [0,1]² units.
func drawLine(g Grid, w, h int, x0, y0, x1, y1, thickness float64) {
	const steps = 64
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		x := x0 + (x1-x0)*t
		y := y0 + (y1-y0)*t
		splatBlob(g, w, h, x, y, thickness)
	}
}
