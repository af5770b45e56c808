package software

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/shaderwall/gpucore"
)

// texture stores straight-alpha float RGBA texels. Row 0 is v = 0.
type texture struct {
	desc gpucore.TextureDesc
	w, h int

	// pix is nil when the texture exceeds the device's size limit.
	pix []float32
}

func (t *texture) at(x, y int) [4]float32 {
	i := (y*t.w + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *texture) set(x, y int, c [4]float32) {
	i := (y*t.w + x) * 4
	t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
}

func (t *texture) fill(c [4]float32) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// coord maps an integer texel coordinate into range.
func (t *texture) coord(i, n int) int {
	if t.desc.Address == gpucore.AddressRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return min(max(i, 0), n-1)
}

func (t *texture) sample(u, v float32) [4]float32 {
	if t.pix == nil {
		return [4]float32{}
	}
	if t.desc.Filter == gpucore.FilterNearest {
		x := t.coord(int(math.Floor(float64(u)*float64(t.w))), t.w)
		y := t.coord(int(math.Floor(float64(v)*float64(t.h))), t.h)
		return t.at(x, y)
	}

	fx := float64(u)*float64(t.w) - 0.5
	fy := float64(v)*float64(t.h) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	ax, ay := float32(fx-x0), float32(fy-y0)
	xa, xb := t.coord(int(x0), t.w), t.coord(int(x0)+1, t.w)
	ya, yb := t.coord(int(y0), t.h), t.coord(int(y0)+1, t.h)

	c00, c10 := t.at(xa, ya), t.at(xb, ya)
	c01, c11 := t.at(xa, yb), t.at(xb, yb)
	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*ax
		bot := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bot-top)*ay
	}
	return out
}

// upload copies img into the texture, image row r to texel row r.
func (t *texture) upload(img image.Image) {
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	for y := range t.h {
		for x := range t.w {
			c := n.NRGBAAt(x, y)
			t.set(x, y, [4]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			})
		}
	}
}

// image returns the texture as an 8-bit image with texel row 0 at the bottom.
func (t *texture) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.w, t.h))
	if t.pix == nil {
		return img
	}
	for y := range t.h {
		for x := range t.w {
			c := t.at(x, y)
			a := clamp01(c[3])
			img.SetRGBA(x, t.h-1-y, color.RGBA{
				R: to8(clamp01(c[0]) * a),
				G: to8(clamp01(c[1]) * a),
				B: to8(clamp01(c[2]) * a),
				A: to8(a),
			})
		}
	}
	return img
}

func clamp01(v float32) float32 { return min(max(v, 0), 1) }

func to8(v float32) uint8 { return uint8(v*255 + 0.5) }
