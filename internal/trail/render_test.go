package trail

import "testing"

func TestRenderProducesOpaquePixels(t *testing.T) {
	trail := NewBuffer(4, 4)
	density := NewBuffer(4, 4)
	vel := make([]int64, 16)
	trail.Data[0] = 8
	density.Data[0] = 4
	vel[0] = int64(4) * 65535 / 2 // normalized speed 0.5

	fb := NewFramebuffer(4, 4)
	p := DefaultRenderParams()
	p.UseBloom = false
	Render(fb, trail, density, vel, nil, p)

	_, _, _, a := fb.GetPixel(0, 0)
	if a != 255 {
		t.Fatalf("alpha = %d, want 255 (opaque)", a)
	}
}

func TestRenderBrightnessZeroAtZeroTrail(t *testing.T) {
	trail := NewBuffer(2, 2)
	density := NewBuffer(2, 2)
	vel := make([]int64, 4)
	fb := NewFramebuffer(2, 2)
	p := DefaultRenderParams()
	p.UseBloom = false
	Render(fb, trail, density, vel, nil, p)

	r, g, b, _ := fb.GetPixel(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("pixel at zero trail = (%d,%d,%d), want (0,0,0)", r, g, b)
	}
}

func TestRenderWhiteHotAtMaxSpeed(t *testing.T) {
	trail := NewBuffer(1, 1)
	density := NewBuffer(1, 1)
	vel := make([]int64, 1)
	trail.Data[0] = 50
	density.Data[0] = 1
	vel[0] = 65535 // normalized speed 1.0

	fb := NewFramebuffer(1, 1)
	p := DefaultRenderParams()
	p.UseBloom = false
	Render(fb, trail, density, vel, nil, p)

	r, g, b, _ := fb.GetPixel(0, 0)
	// At speed=1, output blends fully to (n,n,n): r, g, b must all match.
	if r != g || g != b {
		t.Fatalf("pixel at max speed = (%d,%d,%d), want r==g==b (white-hot)", r, g, b)
	}
}

func TestFramebufferSetGetPixelRoundTrip(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	fb.SetPixel(1, 1, 10, 20, 30, 255)
	r, g, b, a := fb.GetPixel(1, 1)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Fatalf("got (%d,%d,%d,%d), want (10,20,30,255)", r, g, b, a)
	}
}

func TestFramebufferOutOfBoundsIsNoop(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(5, 5, 1, 2, 3, 4) // must not panic
	r, g, b, a := fb.GetPixel(5, 5)
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Fatalf("out-of-bounds GetPixel = (%d,%d,%d,%d), want zero", r, g, b, a)
	}
}

func TestFramebufferImplementsImageImage(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(0, 0, 100, 150, 200, 255)
	img := fb.ToImage()
	r, g, b, a := img.At(0, 0).RGBA()
	if uint8(r>>8) != 100 || uint8(g>>8) != 150 || uint8(b>>8) != 200 || uint8(a>>8) != 255 {
		t.Fatalf("ToImage mismatch at (0,0)")
	}
}
