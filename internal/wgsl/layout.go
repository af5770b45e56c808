// Package wgsl generates the WGSL modules and uniform layouts for effect
// and composite programs.
package wgsl

import (
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
)

// Composite uniform names.
const (
	UniformOpacity = "u_opacity"
	UniformFlipY   = "u_flip_y"
)

// UniformType maps a parameter type to the uniform type it is uploaded as.
// BOOL travels as an int because WGSL bools are not host-shareable.
func UniformType(t effect.ParamType) gpucore.UniformType {
	switch t {
	case effect.TypeFloat:
		return gpucore.UniformFloat
	case effect.TypeInt, effect.TypeBool:
		return gpucore.UniformInt
	case effect.TypeVec2:
		return gpucore.UniformVec2
	case effect.TypeVec3:
		return gpucore.UniformVec3
	default:
		return gpucore.UniformVec4
	}
}

// EffectLayout returns the uniform block of an effect: the standard
// uniforms followed by the descriptor's parameters in declaration order.
func EffectLayout(d *effect.Descriptor) gpucore.UniformLayout {
	var b layoutBuilder
	b.add(effect.UniformTime, gpucore.UniformFloat)
	b.add(effect.UniformDepth, gpucore.UniformFloat)
	b.add(effect.UniformResolution, gpucore.UniformVec2)
	b.add(effect.UniformParallax, gpucore.UniformVec2)
	for _, p := range d.Parameters {
		b.add(p.ID, UniformType(p.Type))
	}
	return b.layout()
}

// CompositeLayout returns the uniform block of the composite program.
func CompositeLayout() gpucore.UniformLayout {
	var b layoutBuilder
	b.add(UniformOpacity, gpucore.UniformFloat)
	b.add(UniformFlipY, gpucore.UniformFloat)
	return b.layout()
}

// sizeAlign returns the size and alignment of t in the uniform address space.
func sizeAlign(t gpucore.UniformType) (size, align int) {
	switch t {
	case gpucore.UniformVec2:
		return 8, 8
	case gpucore.UniformVec3:
		return 12, 16
	case gpucore.UniformVec4:
		return 16, 16
	default:
		return 4, 4
	}
}

type layoutBuilder struct {
	fields []gpucore.UniformField
	end    int
}

func (b *layoutBuilder) add(name string, t gpucore.UniformType) {
	size, align := sizeAlign(t)
	off := roundUp(b.end, align)
	b.fields = append(b.fields, gpucore.UniformField{Name: name, Type: t, Offset: off})
	b.end = off + size
}

func (b *layoutBuilder) layout() gpucore.UniformLayout {
	return gpucore.UniformLayout{Fields: b.fields, Size: roundUp(b.end, 16)}
}

func roundUp(n, align int) int {
	return (n + align - 1) / align * align
}
