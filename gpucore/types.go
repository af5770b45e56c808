package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// ProgramID is an opaque handle to a linked shader program.
type ProgramID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// FramebufferID is an opaque handle to a render target binding.
type FramebufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Color is a straight-alpha RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm
)

// FilterMode selects texture sampling.
type FilterMode uint8

// Filter modes.
const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// AddressMode selects how coordinates outside [0, 1] are sampled.
type AddressMode uint8

// Address modes.
const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
)

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopyDst indicates the texture can receive uploads.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageTextureBinding indicates the texture can be sampled.
	TextureUsageTextureBinding TextureUsage = 1 << 2

	// TextureUsageRenderAttachment indicates the texture can be used as a render target.
	TextureUsageRenderAttachment TextureUsage = 1 << 4
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	Width, Height int

	// Format defaults to TextureFormatRGBA8Unorm when zero.
	Format TextureFormat

	Filter  FilterMode
	Address AddressMode
	Usage   TextureUsage
}

// ProgramKind selects the resource layout a program is built with.
type ProgramKind uint8

// Program kinds.
const (
	// ProgramEffect renders an effect layer. It reads only uniforms.
	ProgramEffect ProgramKind = iota

	// ProgramComposite samples texture unit 0 and alpha-blends onto the
	// bound framebuffer.
	ProgramComposite
)

// String returns the kind name.
func (k ProgramKind) String() string {
	if k == ProgramComposite {
		return "composite"
	}
	return "effect"
}

// UniformType is a host-shareable uniform type. Each one has a typed
// setter on [Device].
type UniformType uint8

// Uniform types.
const (
	UniformFloat UniformType = iota + 1
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
)

// String returns the WGSL spelling of the type.
func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "f32"
	case UniformInt:
		return "i32"
	case UniformVec2:
		return "vec2<f32>"
	case UniformVec3:
		return "vec3<f32>"
	case UniformVec4:
		return "vec4<f32>"
	}
	return "unknown"
}

// UniformField is one member of a program's uniform block.
type UniformField struct {
	Name   string
	Type   UniformType
	Offset int
}

// UniformLayout is the byte layout of a program's uniform block.
type UniformLayout struct {
	Fields []UniformField

	// Size is the block size in bytes, a multiple of 16.
	Size int
}

// Field returns the field with the given name.
func (l *UniformLayout) Field(name string) (UniformField, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}

// ProgramDesc describes a program to compile and link.
type ProgramDesc struct {
	// Label identifies the program: the effect id, or "composite".
	Label string

	Kind ProgramKind

	// Source is the complete WGSL module, including vs_main and fs_main.
	Source string

	// Uniforms is the layout of the uniform block at group 0, binding 0.
	Uniforms UniformLayout
}
