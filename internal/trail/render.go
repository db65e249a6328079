package trail

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// RenderParams tunes the tone-mapping in Render.
type RenderParams struct {
	TRef      float32 // log brightness reference, spec ~12-20
	MaxVel    float32
	UseBloom  bool
	BloomGain float32
}

// DefaultRenderParams returns the spec's suggested tone-mapping constants.
func DefaultRenderParams() RenderParams {
	return RenderParams{TRef: 16, MaxVel: 0.55, UseBloom: true, BloomGain: 0.6}
}

// Framebuffer is an RGBA pixel buffer implementing image.Image, grounded on
// gogpu-gg's Pixmap (same field shape, same At/Bounds/ColorModel contract).
type Framebuffer struct {
	width, height int
	data          []uint8
}

// NewFramebuffer allocates a zeroed (opaque black) w×h RGBA framebuffer.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{width: w, height: h, data: make([]uint8, w*h*4)}
}

func (f *Framebuffer) SetPixel(x, y int, r, g, b, a uint8) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	i := (y*f.width + x) * 4
	f.data[i+0] = r
	f.data[i+1] = g
	f.data[i+2] = b
	f.data[i+3] = a
}

func (f *Framebuffer) GetPixel(x, y int) (r, g, b, a uint8) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return 0, 0, 0, 0
	}
	i := (y*f.width + x) * 4
	return f.data[i+0], f.data[i+1], f.data[i+2], f.data[i+3]
}

func (f *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

func (f *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

func (f *Framebuffer) At(x, y int) color.Color {
	r, g, b, a := f.GetPixel(x, y)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// ToImage returns a standard library *image.RGBA view of the framebuffer.
func (f *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	copy(img.Pix, f.data)
	return img
}

// SavePNG writes the framebuffer to path as a PNG file.
func (f *Framebuffer) SavePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, f.ToImage())
}

// Render tone-maps trail/vel/density (and optionally bloom) into fb, per
// §4.8's brightness/speed/green-phosphor/white-hot formulas.
func Render(fb *Framebuffer, trail, density Buffer, vel []int64, bloom *Buffer, p RenderParams) {
	logTRef := float32(math.Log(1 + float64(p.TRef)))
	for y := 0; y < trail.H; y++ {
		for x := 0; x < trail.W; x++ {
			idx := y*trail.W + x
			t := trail.Data[idx]
			n := clampF(float32(math.Log(1+float64(maxF(t, 0))))/logTRef, 0, 1)

			var speed float32
			d := density.Data[idx]
			if d > 0 {
				speed = clampF(float32(vel[idx])/(d*65535), 0, 1)
			}

			r, g, b := phosphorColor(n)

			if p.UseBloom && bloom != nil {
				bv := bloom.Data[idx] * p.BloomGain
				r += 0
				g += bv
				b += bv * 0.3
			}

			// White-hot blend toward (n,n,n) proportional to speed.
			r = mixF(r, n, speed)
			g = mixF(g, n, speed)
			b = mixF(b, n, speed)

			fb.SetPixel(x, y, toByte(r), toByte(g), toByte(b), 255)
		}
	}
}

// phosphorColor is a green-phosphor polynomial base color as a function of
// normalized brightness n in [0,1].
func phosphorColor(n float32) (r, g, b float32) {
	r = 0.15*n + 0.25*n*n
	g = 0.55*n + 0.45*n*n
	b = 0.10 * n * n
	return
}

func mixF(a, b, t float32) float32 {
	return a + (b-a)*t
}

func toByte(v float32) uint8 {
	v = clampF(v, 0, 1)
	return uint8(v*255 + 0.5)
}
