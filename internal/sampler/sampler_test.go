package sampler

import (
	"math/rand"
	"testing"
)

func singleCellGrid(w, h, cellX, cellY int) DensityGrid {
	data := make([]float32, w*h)
	data[cellY*w+cellX] = 1
	return DensityGrid{W: w, H: h, Data: data}
}

// S4: given a density grid that is 1 in one cell and 0 elsewhere, all N
// samples lie within that cell's NDC footprint (after sub-cell jitter).
func TestSampleConcentratedCell(t *testing.T) {
	const w, h = 16, 16
	const cellX, cellY = 5, 9
	grid := singleCellGrid(w, h, cellX, cellY)
	rng := rand.New(rand.NewSource(42))

	samples := Sample(DensityGrid(grid), 500, rng)

	xLo := (float32(cellX)/w)*2 - 1 - 1.0/w
	xHi := (float32(cellX+1)/w)*2 - 1 + 1.0/w
	yLo := (float32(cellY)/h)*2 - 1 - 1.0/h
	yHi := (float32(cellY+1)/h)*2 - 1 + 1.0/h

	for i, s := range samples {
		if s.X < xLo || s.X > xHi || s.Y < yLo || s.Y > yHi {
			t.Fatalf("sample %d = (%v,%v) outside expected cell footprint [%v,%v]x[%v,%v]",
				i, s.X, s.Y, xLo, xHi, yLo, yHi)
		}
	}
}

// S7: sampler called on an all-zeros grid returns N positions all within
// [-0.85, 0.85]².
func TestSampleDegenerateFallback(t *testing.T) {
	grid := DensityGrid{W: 8, H: 8, Data: make([]float32, 64)}
	rng := rand.New(rand.NewSource(7))
	samples := Sample(grid, 200, rng)
	for i, s := range samples {
		if s.X < -SafeBox || s.X > SafeBox || s.Y < -SafeBox || s.Y > SafeBox {
			t.Fatalf("sample %d = (%v,%v) outside safe box [-%v,%v]", i, s.X, s.Y, SafeBox, SafeBox)
		}
	}
}

func TestSampleRespectsClamp(t *testing.T) {
	grid := singleCellGrid(4, 4, 0, 0)
	rng := rand.New(rand.NewSource(3))
	samples := Sample(DensityGrid(grid), 1000, rng)
	for _, s := range samples {
		if s.X < -1 || s.X > 1 || s.Y < -1 || s.Y > 1 {
			t.Fatalf("sample (%v,%v) outside NDC bounds", s.X, s.Y)
		}
	}
}

// TestSampleDistributionConverges is a coarse check of invariant 6: sampling from a
// two-cell grid with a 3:1 density ratio should recover roughly that ratio.
func TestSampleDistributionConverges(t *testing.T) {
	const w, h = 4, 4
	data := make([]float32, w*h)
	data[0] = 3
	data[1] = 1
	grid := DensityGrid{W: w, H: h, Data: data}
	rng := rand.New(rand.NewSource(99))

	const n = 20000
	samples := Sample(grid, n, rng)

	cell0, cell1 := 0, 0
	for _, s := range samples {
		col := int((s.X + 1) / 2 * w)
		row := int((s.Y + 1) / 2 * h)
		if row == 0 && col == 0 {
			cell0++
		} else if row == 0 && col == 1 {
			cell1++
		}
	}
	ratio := float64(cell0) / float64(cell1)
	if ratio < 2.5 || ratio > 3.5 {
		t.Fatalf("empirical ratio %v far from expected 3.0 (cell0=%d cell1=%d)", ratio, cell0, cell1)
	}
}
