//go:build !nogpu

package native

import (
	"encoding/binary"
	"math"
)

// minUniformSize is the smallest uniform buffer bound; WebGPU requires
// uniform blocks to be 16-byte multiples.
const minUniformSize = 16

func newUniformBlock(size int) []byte {
	return make([]byte, max(size, minUniformSize))
}

// setFloats writes n float components of v at the offset of a declared
// field of the current program. Undeclared names are ignored.
func (d *Device) setFloats(name string, v []float32) {
	p := d.current
	if p == nil {
		return
	}
	f, ok := p.desc.Uniforms.Field(name)
	if !ok {
		return
	}
	off := f.Offset
	for i, c := range v {
		o := off + 4*i
		if o+4 > len(p.uniforms) {
			return
		}
		binary.LittleEndian.PutUint32(p.uniforms[o:], math.Float32bits(c))
	}
}

// SetFloat sets a float uniform.
func (d *Device) SetFloat(name string, v float32) { d.setFloats(name, []float32{v}) }

// SetInt sets an i32 uniform.
func (d *Device) SetInt(name string, v int32) {
	p := d.current
	if p == nil {
		return
	}
	f, ok := p.desc.Uniforms.Field(name)
	if !ok || f.Offset+4 > len(p.uniforms) {
		return
	}
	binary.LittleEndian.PutUint32(p.uniforms[f.Offset:], uint32(v))
}

// SetVec2 sets a vec2 uniform.
func (d *Device) SetVec2(name string, v [2]float32) { d.setFloats(name, v[:]) }

// SetVec3 sets a vec3 uniform.
func (d *Device) SetVec3(name string, v [3]float32) { d.setFloats(name, v[:]) }

// SetVec4 sets a vec4 uniform.
func (d *Device) SetVec4(name string, v [4]float32) { d.setFloats(name, v[:]) }
