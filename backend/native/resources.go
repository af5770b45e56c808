//go:build !nogpu

package native

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/internal/wgsl"
)

// === Programs ===

// CreateProgram validates the WGSL source with naga, creates the shader
// module and the pipeline for the program's usual target format.
func (d *Device) CreateProgram(desc gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if d.destroyed {
		return gpucore.InvalidID, ErrReleased
	}
	if _, err := wgsl.Validate(desc.Source); err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: program %q: %w", desc.Label, err)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "shaderwall_" + desc.Label,
		Source: hal.ShaderSource{WGSL: desc.Source},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: compile %q: %w", desc.Label, err)
	}

	p := &program{
		desc:      desc,
		module:    module,
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
		uniforms:  newUniformBlock(desc.Uniforms.Size),
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if desc.Kind == gpucore.ProgramComposite {
		format = d.surfaceFormat
	}
	if _, err := d.pipelineFor(p, format); err != nil {
		p.destroy(d.device)
		return gpucore.InvalidID, err
	}

	id := gpucore.ProgramID(d.newID())
	d.mu.Lock()
	d.programs[id] = p
	d.mu.Unlock()
	return id, nil
}

// DestroyProgram releases a program. Draws already recorded keep their
// pipeline until the frame is flushed.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	p, ok := d.programs[id]
	if ok {
		delete(d.programs, id)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	if d.current == p {
		d.current = nil
	}
	if len(d.passes) > 0 {
		d.retiredPrograms = append(d.retiredPrograms, p)
		return
	}
	p.destroy(d.device)
}

// === Textures ===

// texture is a hal texture with its default view.
type texture struct {
	desc   gpucore.TextureDesc
	format gputypes.TextureFormat
	tex    hal.Texture
	view   hal.TextureView
}

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func convertFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	if f == gpucore.TextureFormatBGRA8Unorm {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

func convertUsage(u gpucore.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&gpucore.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&gpucore.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&gpucore.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

func (d *Device) newTexture(desc gpucore.TextureDesc, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("native: texture %q: size %dx%d must be positive", desc.Label, desc.Width, desc.Height)
	}
	if desc.Width > d.maxTextureSize || desc.Height > d.maxTextureSize {
		return nil, fmt.Errorf("native: texture %q: size %dx%d exceeds limit %d",
			desc.Label, desc.Width, desc.Height, d.maxTextureSize)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}, //nolint:gosec // bounded by maxTextureSize
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create view for %q: %w", desc.Label, err)
	}
	return &texture{desc: desc, format: format, tex: tex, view: view}, nil
}

// CreateTexture allocates a 2D texture with a default view.
func (d *Device) CreateTexture(desc gpucore.TextureDesc) (gpucore.TextureID, error) {
	if d.destroyed {
		return gpucore.InvalidID, ErrReleased
	}
	t, err := d.newTexture(desc, convertFormat(desc.Format), convertUsage(desc.Usage))
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.TextureID(d.newID())
	d.mu.Lock()
	d.textures[id] = t
	d.mu.Unlock()
	return id, nil
}

// WriteTexture uploads img with straight alpha. Rows are flipped so image
// row 0 lands on the bottom texel row.
func (d *Device) WriteTexture(id gpucore.TextureID, img image.Image) error {
	d.mu.Lock()
	t, ok := d.textures[id]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("native: texture %d not found", id)
	}
	b := img.Bounds()
	if b.Dx() != t.desc.Width || b.Dy() != t.desc.Height {
		return fmt.Errorf("native: image %dx%d does not match texture %dx%d",
			b.Dx(), b.Dy(), t.desc.Width, t.desc.Height)
	}

	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	w, h := b.Dx(), b.Dy()
	data := make([]byte, w*h*4)
	for y := range h {
		src := n.Pix[y*n.Stride : y*n.Stride+w*4]
		dst := data[(h-1-y)*w*4:]
		copy(dst[:w*4], src)
	}
	if t.format == gputypes.TextureFormatBGRA8Unorm {
		for i := 0; i < len(data); i += 4 {
			data[i], data[i+2] = data[i+2], data[i]
		}
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * 4), //nolint:gosec // bounded by maxTextureSize
			RowsPerImage: uint32(h),     //nolint:gosec // bounded by maxTextureSize
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // bounded by maxTextureSize
	)
	if err != nil {
		return fmt.Errorf("native: write texture %q: %w", t.desc.Label, err)
	}
	return nil
}

// DestroyTexture releases a texture. Textures referenced by recorded draws
// are released after the next Flush.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	if ok {
		delete(d.textures, id)
	}
	d.mu.Unlock()
	if ok {
		d.retire(t)
	}
}

func (d *Device) retire(t *texture) {
	if len(d.passes) > 0 {
		d.retired = append(d.retired, t)
		return
	}
	t.destroy(d.device)
}

func (d *Device) releaseRetired() {
	for _, t := range d.retired {
		t.destroy(d.device)
	}
	d.retired = d.retired[:0]
	for _, p := range d.retiredPrograms {
		p.destroy(d.device)
	}
	d.retiredPrograms = d.retiredPrograms[:0]
}

// samplerKey identifies a sampler configuration.
type samplerKey struct {
	filter  gpucore.FilterMode
	address gpucore.AddressMode
}

func (d *Device) samplerFor(desc gpucore.TextureDesc) (hal.Sampler, error) {
	key := samplerKey{desc.Filter, desc.Address}
	if s, ok := d.samplers[key]; ok {
		return s, nil
	}
	filter := gputypes.FilterModeLinear
	if desc.Filter == gpucore.FilterNearest {
		filter = gputypes.FilterModeNearest
	}
	address := gputypes.AddressModeClampToEdge
	if desc.Address == gpucore.AddressRepeat {
		address = gputypes.AddressModeRepeat
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "shaderwall_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	d.samplers[key] = s
	return s, nil
}

// === Framebuffers ===

type framebuffer struct {
	color gpucore.TextureID
}

// CreateFramebuffer wraps a texture as a render target.
func (d *Device) CreateFramebuffer(color gpucore.TextureID) (gpucore.FramebufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[color]; !ok {
		return gpucore.InvalidID, fmt.Errorf("native: texture %d not found", color)
	}
	id := gpucore.FramebufferID(d.newID())
	d.framebuffers[id] = &framebuffer{color: color}
	return id, nil
}

// FramebufferStatus reports whether the attached texture can be rendered
// to.
func (d *Device) FramebufferStatus(id gpucore.FramebufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	fb, ok := d.framebuffers[id]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d not found", ErrIncompleteFramebuffer, id)
	}
	t, ok := d.textures[fb.color]
	if !ok || t.view == nil {
		return fmt.Errorf("%w: missing color attachment", ErrIncompleteFramebuffer)
	}
	if t.desc.Usage&gpucore.TextureUsageRenderAttachment == 0 {
		return fmt.Errorf("%w: texture %d is not a render attachment", ErrIncompleteFramebuffer, fb.color)
	}
	return nil
}

// DestroyFramebuffer releases a framebuffer. The texture stays alive.
func (d *Device) DestroyFramebuffer(id gpucore.FramebufferID) {
	d.mu.Lock()
	delete(d.framebuffers, id)
	d.mu.Unlock()
	if d.bound == id {
		d.bound = gpucore.InvalidID
		d.open = nil
	}
}

// === Surface ===

// ensureSurface returns the visible surface view, allocating the
// offscreen surface at the viewport size when no host view is set.
func (d *Device) ensureSurface() (hal.TextureView, gputypes.TextureFormat, error) {
	if d.surfaceView != nil {
		return d.surfaceView, d.surfaceFormat, nil
	}
	if d.viewW <= 0 || d.viewH <= 0 {
		return nil, 0, fmt.Errorf("native: surface has no size")
	}
	t, err := d.newTexture(gpucore.TextureDesc{
		Label:  "shaderwall_surface",
		Width:  d.viewW,
		Height: d.viewH,
	}, d.surfaceFormat, gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, 0, err
	}
	d.surfaceTex = t
	d.surfaceView = t.view
	d.surfaceW, d.surfaceH = uint32(d.viewW), uint32(d.viewH) //nolint:gosec // bounded by maxTextureSize
	return d.surfaceView, d.surfaceFormat, nil
}

// releaseSurface drops the visible surface. An internal surface texture
// is destroyed once no recorded pass uses it.
func (d *Device) releaseSurface() {
	if d.surfaceTex != nil {
		d.retire(d.surfaceTex)
		d.surfaceTex = nil
	}
	d.surfaceView = nil
	d.surfaceExternal = false
	d.surfaceW, d.surfaceH = 0, 0
	if d.bound == gpucore.InvalidID {
		d.open = nil
	}
}
