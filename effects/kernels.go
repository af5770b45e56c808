package effects

import (
	"math"

	"github.com/gogpu/shaderwall/backend/software"
	"github.com/gogpu/shaderwall/effect"
)

func init() {
	software.RegisterKernel(Gradient, gradient)
	software.RegisterKernel(Plasma, plasma)
	software.RegisterKernel(Snow, snow)
	software.RegisterKernel(Vignette, vignette)
}

func gradient(f *software.Fragment) [4]float32 {
	top, bottom := f.Vec4("u_top"), f.Vec4("u_bottom")
	var out [4]float32
	for i := range out {
		out[i] = mix(bottom[i], top[i], f.UV[1])
	}
	return out
}

func vignette(f *software.Fragment) [4]float32 {
	dx, dy := f.UV[0]-0.5, f.UV[1]-0.5
	d := sqrt(dx*dx+dy*dy) * math.Sqrt2
	r := f.Float("u_radius")
	edge := smoothstep(r*0.5, r, d)
	c := f.Vec4("u_color")
	return [4]float32{c[0], c[1], c[2], edge * f.Float("u_strength") * c[3]}
}

func plasma(f *software.Fragment) [4]float32 {
	t := f.Float(effect.UniformTime) * f.Float("u_speed")
	s := f.Float("u_scale")
	x, y := f.UV[0], f.UV[1]
	v := sin(x*s+t) + sin(y*s+t*0.7) + sin((x+y)*s+t*1.3)
	return [4]float32{
		0.5 + 0.5*cos(v),
		0.5 + 0.5*cos(v+2.0944),
		0.5 + 0.5*cos(v+4.1888),
		f.Float("u_alpha"),
	}
}

func snowHash(x, y float32) float32 {
	return fract(sin(x*127.1+y*311.7) * 43758.5453)
}

func snow(f *software.Fragment) [4]float32 {
	res := f.Vec2(effect.UniformResolution)
	aspect := res[0] / max(res[1], 1)
	t := f.Float(effect.UniformTime)
	speed, density, wind := f.Float("u_speed"), f.Float("u_density"), f.Float("u_wind")
	drift := f.Int("u_drift") != 0

	var alpha float32
	for i := range f.Int("u_layers") {
		layer := float32(i)
		scale := density * (1 + layer)
		px := f.UV[0] * aspect * scale
		py := f.UV[1]*scale + t*speed*scale*(0.5+0.25*layer)
		if drift {
			px += sin(t*0.5+layer) * wind
		}
		cx, cy := floor(px), floor(py)
		ox := snowHash(cx, cy) - 0.5
		oy := snowHash(cx+17, cy+17) - 0.5
		lx := fract(px) - 0.5 - ox*0.6
		ly := fract(py) - 0.5 - oy*0.6
		size := 0.12 / (1 + layer)
		alpha = max(alpha, 1-smoothstep(size*0.5, size, sqrt(lx*lx+ly*ly)))
	}
	c := f.Vec4("u_color")
	return [4]float32{c[0], c[1], c[2], alpha * c[3]}
}

func sin(v float32) float32   { return float32(math.Sin(float64(v))) }
func cos(v float32) float32   { return float32(math.Cos(float64(v))) }
func sqrt(v float32) float32  { return float32(math.Sqrt(float64(v))) }
func floor(v float32) float32 { return float32(math.Floor(float64(v))) }
func fract(v float32) float32 { return v - floor(v) }

func mix(a, b, t float32) float32 { return a + (b-a)*t }

func smoothstep(lo, hi, x float32) float32 {
	if hi == lo {
		if x < lo {
			return 0
		}
		return 1
	}
	t := min(max((x-lo)/(hi-lo), 0), 1)
	return t * t * (3 - 2*t)
}
