package software

import (
	"sync"
)

// Kernel computes one fragment of an effect. It returns straight-alpha
// RGBA. Kernels must be safe to call from multiple goroutines.
type Kernel func(f *Fragment) [4]float32

// Fragment is the input of a Kernel invocation.
type Fragment struct {
	// X, Y is the pixel position with a bottom-left origin; the fragment
	// centre is at (X+0.5, Y+0.5).
	X, Y int

	// Coord is the fragment centre in pixels.
	Coord [2]float32

	// UV is the normalized fragment position in [0, 1].
	UV [2]float32

	prog *program
	dev  *Device
}

// Float returns a float uniform, or 0 when unset.
func (f *Fragment) Float(name string) float32 { return f.prog.vecs[name][0] }

// Int returns an int uniform, or 0 when unset.
func (f *Fragment) Int(name string) int32 { return f.prog.ints[name] }

// Vec2 returns a vec2 uniform.
func (f *Fragment) Vec2(name string) [2]float32 {
	v := f.prog.vecs[name]
	return [2]float32{v[0], v[1]}
}

// Vec3 returns a vec3 uniform.
func (f *Fragment) Vec3(name string) [3]float32 {
	v := f.prog.vecs[name]
	return [3]float32{v[0], v[1], v[2]}
}

// Vec4 returns a vec4 uniform.
func (f *Fragment) Vec4(name string) [4]float32 { return f.prog.vecs[name] }

// Sample samples the texture bound to unit at (u, v). Unbound units read
// as transparent black.
func (f *Fragment) Sample(unit int, u, v float32) [4]float32 {
	tex := f.dev.textures[f.dev.units[unit]]
	if tex == nil {
		return [4]float32{}
	}
	return tex.sample(u, v)
}

// Global kernels are available to every device.
var (
	kernelsMu sync.RWMutex
	kernels   = make(map[string]Kernel)
)

// RegisterKernel makes k the software implementation of the effect with
// the given id on every device. It is typically called from init().
func RegisterKernel(id string, k Kernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	kernels[id] = k
}

func lookupKernel(id string) (Kernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[id]
	return k, ok
}

// compositeKernel draws texture unit 0 with opacity. The device blends the
// result as mix(dst, src, src.a). It mirrors the composite WGSL program.
func compositeKernel(f *Fragment) [4]float32 {
	v := f.UV[1]
	if f.Float("u_flip_y") > 0.5 {
		v = 1 - v
	}
	c := f.Sample(0, f.UV[0], v)
	c[3] *= f.Float("u_opacity")
	return c
}
