// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/backend"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/internal/parallel"
)

// DefaultMaxTextureSize is the largest texture dimension a device accepts
// unless configured otherwise.
const DefaultMaxTextureSize = 8192

// ErrIncompleteFramebuffer is returned by FramebufferStatus for targets
// that cannot be rendered to.
var ErrIncompleteFramebuffer = errors.New("software: incomplete framebuffer")

// bands is the worker pool shared by all software devices.
var bands = sync.OnceValue(func() *parallel.Pool { return parallel.NewPool(0) })

func init() {
	backend.Register(backend.BackendSoftware, func(cfg backend.Config) (gpucore.Device, error) {
		var opts []Option
		if cfg.Logger != nil {
			opts = append(opts, WithLogger(cfg.Logger))
		}
		return New(opts...), nil
	})
}

// Option configures a Device.
type Option func(*Device)

// WithKernel registers k for the effect id on this device only. It takes
// precedence over kernels registered with RegisterKernel.
func WithKernel(id string, k Kernel) Option {
	return func(d *Device) { d.kernels[id] = k }
}

// WithMaxTextureSize sets the largest texture dimension. Framebuffers with
// larger attachments report ErrIncompleteFramebuffer.
func WithMaxTextureSize(n int) Option {
	return func(d *Device) { d.maxTextureSize = n }
}

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

type program struct {
	desc   gpucore.ProgramDesc
	kernel Kernel
	vecs   map[string][4]float32
	ints   map[string]int32
}

func (p *program) declares(name string) bool {
	if len(p.desc.Uniforms.Fields) == 0 {
		return true
	}
	_, ok := p.desc.Uniforms.Field(name)
	return ok
}

type framebuffer struct {
	color gpucore.TextureID
}

// Counts reports live device objects.
type Counts struct {
	Programs     int
	Textures     int
	Framebuffers int
}

// Device is a CPU implementation of gpucore.Device.
type Device struct {
	log            *slog.Logger
	kernels        map[string]Kernel
	maxTextureSize int

	nextID       uint64
	programs     map[gpucore.ProgramID]*program
	textures     map[gpucore.TextureID]*texture
	framebuffers map[gpucore.FramebufferID]*framebuffer

	surface      *texture
	bound        gpucore.FramebufferID
	viewW, viewH int
	current      *program
	units        map[int]gpucore.TextureID

	draws  int
	frames int
}

var _ gpucore.Device = (*Device)(nil)

// New creates a software device with an empty 1x1 surface.
func New(opts ...Option) *Device {
	d := &Device{
		log:            shaderwall.Logger(),
		kernels:        make(map[string]Kernel),
		maxTextureSize: DefaultMaxTextureSize,
		nextID:         1,
		programs:       make(map[gpucore.ProgramID]*program),
		textures:       make(map[gpucore.TextureID]*texture),
		framebuffers:   make(map[gpucore.FramebufferID]*framebuffer),
		units:          make(map[int]gpucore.TextureID),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.surface = d.newTexture(gpucore.TextureDesc{Label: "surface", Width: 1, Height: 1})
	d.viewW, d.viewH = 1, 1
	return d
}

func (d *Device) newID() uint64 {
	id := d.nextID
	d.nextID++
	return id
}

func (d *Device) newTexture(desc gpucore.TextureDesc) *texture {
	t := &texture{desc: desc, w: desc.Width, h: desc.Height}
	if desc.Width <= d.maxTextureSize && desc.Height <= d.maxTextureSize {
		t.pix = make([]float32, desc.Width*desc.Height*4)
	}
	return t
}

// CreateProgram links the program to a kernel: the built-in composite
// kernel, a device kernel or a globally registered kernel, in that order.
func (d *Device) CreateProgram(desc gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	var k Kernel
	if desc.Kind == gpucore.ProgramComposite {
		k = compositeKernel
	} else if dk, ok := d.kernels[desc.Label]; ok {
		k = dk
	} else if gk, ok := lookupKernel(desc.Label); ok {
		k = gk
	} else {
		return gpucore.InvalidID, fmt.Errorf("software: no kernel for program %q", desc.Label)
	}

	id := gpucore.ProgramID(d.newID())
	d.programs[id] = &program{
		desc:   desc,
		kernel: k,
		vecs:   make(map[string][4]float32),
		ints:   make(map[string]int32),
	}
	return id, nil
}

// DestroyProgram releases a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if d.current == p {
		d.current = nil
	}
	delete(d.programs, id)
}

// CreateTexture allocates a texture.
func (d *Device) CreateTexture(desc gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("software: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	id := gpucore.TextureID(d.newID())
	d.textures[id] = d.newTexture(desc)
	return id, nil
}

// WriteTexture uploads img into the texture.
func (d *Device) WriteTexture(id gpucore.TextureID, img image.Image) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("software: texture %d not found", id)
	}
	if t.pix == nil {
		return fmt.Errorf("software: texture %d has no storage", id)
	}
	if b := img.Bounds(); b.Dx() != t.w || b.Dy() != t.h {
		return fmt.Errorf("software: image %dx%d does not match texture %dx%d", b.Dx(), b.Dy(), t.w, t.h)
	}
	t.upload(img)
	return nil
}

// DestroyTexture releases a texture.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	delete(d.textures, id)
	for unit, bound := range d.units {
		if bound == id {
			delete(d.units, unit)
		}
	}
}

// CreateFramebuffer creates a render target for a texture.
func (d *Device) CreateFramebuffer(color gpucore.TextureID) (gpucore.FramebufferID, error) {
	if _, ok := d.textures[color]; !ok {
		return gpucore.InvalidID, fmt.Errorf("software: texture %d not found", color)
	}
	id := gpucore.FramebufferID(d.newID())
	d.framebuffers[id] = &framebuffer{color: color}
	return id, nil
}

// FramebufferStatus checks that the framebuffer's attachment is renderable.
func (d *Device) FramebufferStatus(id gpucore.FramebufferID) error {
	fb, ok := d.framebuffers[id]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d not found", ErrIncompleteFramebuffer, id)
	}
	t, ok := d.textures[fb.color]
	if !ok {
		return fmt.Errorf("%w: missing color attachment", ErrIncompleteFramebuffer)
	}
	if t.pix == nil {
		return fmt.Errorf("%w: attachment %dx%d exceeds %d", ErrIncompleteFramebuffer, t.w, t.h, d.maxTextureSize)
	}
	return nil
}

// DestroyFramebuffer releases a framebuffer.
func (d *Device) DestroyFramebuffer(id gpucore.FramebufferID) {
	if d.bound == id {
		d.bound = gpucore.InvalidID
	}
	delete(d.framebuffers, id)
}

// BindFramebuffer selects the draw target.
func (d *Device) BindFramebuffer(id gpucore.FramebufferID) {
	d.bound = id
}

// Viewport sets the draw area. For the surface it also resizes the surface.
func (d *Device) Viewport(width, height int) {
	d.viewW, d.viewH = width, height
	if d.bound == gpucore.InvalidID && width > 0 && height > 0 &&
		(width != d.surface.w || height != d.surface.h) {
		d.surface = d.newTexture(gpucore.TextureDesc{Label: "surface", Width: width, Height: height})
	}
}

func (d *Device) target() *texture {
	if d.bound == gpucore.InvalidID {
		return d.surface
	}
	fb, ok := d.framebuffers[d.bound]
	if !ok {
		return nil
	}
	return d.textures[fb.color]
}

// Clear fills the bound target.
func (d *Device) Clear(c gpucore.Color) {
	if t := d.target(); t != nil && t.pix != nil {
		t.fill([4]float32{c.R, c.G, c.B, c.A})
	}
}

// UseProgram selects the current program.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.current = d.programs[id]
}

func (d *Device) setVec(name string, v [4]float32) {
	if d.current != nil && d.current.declares(name) {
		d.current.vecs[name] = v
	}
}

// SetFloat sets a float uniform.
func (d *Device) SetFloat(name string, v float32) { d.setVec(name, [4]float32{v}) }

// SetInt sets an int uniform.
func (d *Device) SetInt(name string, v int32) {
	if d.current != nil && d.current.declares(name) {
		d.current.ints[name] = v
	}
}

// SetVec2 sets a vec2 uniform.
func (d *Device) SetVec2(name string, v [2]float32) { d.setVec(name, [4]float32{v[0], v[1]}) }

// SetVec3 sets a vec3 uniform.
func (d *Device) SetVec3(name string, v [3]float32) { d.setVec(name, [4]float32{v[0], v[1], v[2]}) }

// SetVec4 sets a vec4 uniform.
func (d *Device) SetVec4(name string, v [4]float32) { d.setVec(name, v) }

// BindTexture binds a texture to a sampling unit.
func (d *Device) BindTexture(unit int, id gpucore.TextureID) {
	d.units[unit] = id
}

// DrawQuad runs the current program over the viewport of the bound target.
// Composite programs blend with mix(dst, src, src.a); effect programs
// replace the target contents.
func (d *Device) DrawQuad() error {
	p := d.current
	if p == nil {
		return errors.New("software: no program in use")
	}
	t := d.target()
	if t == nil {
		return fmt.Errorf("software: framebuffer %d not found", d.bound)
	}
	if t.pix == nil {
		return fmt.Errorf("%w: draw to unallocated target", ErrIncompleteFramebuffer)
	}

	w, h := min(d.viewW, t.w), min(d.viewH, t.h)
	if w <= 0 || h <= 0 {
		return nil
	}
	blend := p.desc.Kind == gpucore.ProgramComposite
	vw, vh := float32(d.viewW), float32(d.viewH)

	rows := func(y0, y1 int) {
		f := Fragment{prog: p, dev: d}
		for y := y0; y < y1; y++ {
			for x := range w {
				f.X, f.Y = x, y
				f.Coord = [2]float32{float32(x) + 0.5, float32(y) + 0.5}
				f.UV = [2]float32{f.Coord[0] / vw, f.Coord[1] / vh}
				src := p.kernel(&f)
				if blend {
					dst := t.at(x, y)
					k := src[3]
					src = [4]float32{
						dst[0] + (src[0]-dst[0])*k,
						dst[1] + (src[1]-dst[1])*k,
						dst[2] + (src[2]-dst[2])*k,
						k + dst[3]*(1-k),
					}
				}
				t.set(x, y, src)
			}
		}
	}

	if err := bands().Bands(h, rows); err != nil {
		return fmt.Errorf("software: kernel %q: %w", p.desc.Label, err)
	}
	d.draws++
	return nil
}

// Flush ends the frame. Drawing is immediate, so it only counts frames.
func (d *Device) Flush() error {
	d.frames++
	d.log.Debug("software: frame flushed", "frame", d.frames, "draws", d.draws)
	d.draws = 0
	return nil
}

// Destroy releases every object.
func (d *Device) Destroy() {
	clear(d.programs)
	clear(d.textures)
	clear(d.framebuffers)
	clear(d.units)
	d.current = nil
	d.bound = gpucore.InvalidID
}

// Live returns the number of live programs, textures and framebuffers.
func (d *Device) Live() Counts {
	return Counts{
		Programs:     len(d.programs),
		Textures:     len(d.textures),
		Framebuffers: len(d.framebuffers),
	}
}

// Frames returns the number of flushed frames.
func (d *Device) Frames() int { return d.frames }

// ReadPixels returns the visible surface as an image with a top-left origin.
func (d *Device) ReadPixels() *image.RGBA {
	return d.surface.image()
}

// SurfaceAt returns the unquantized surface colour at image coordinates
// (x, y) with a top-left origin.
func (d *Device) SurfaceAt(x, y int) gpucore.Color {
	c := d.surface.at(x, d.surface.h-1-y)
	return gpucore.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// TextureAt returns the texel at (x, y) of a texture, row 0 first.
func (d *Device) TextureAt(id gpucore.TextureID, x, y int) (gpucore.Color, bool) {
	t, ok := d.textures[id]
	if !ok || t.pix == nil || x < 0 || y < 0 || x >= t.w || y >= t.h {
		return gpucore.Color{}, false
	}
	c := t.at(x, y)
	return gpucore.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, true
}
