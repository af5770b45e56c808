// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderwall/gpucore"
)

// submitTimeout bounds the wait for a submitted frame.
const submitTimeout = 5 * time.Second

// pollInterval is the sleep between PollCompleted checks.
const pollInterval = 100 * time.Microsecond

// pass is a recorded render pass: draws into one target view.
type pass struct {
	target gpucore.FramebufferID
	view   hal.TextureView
	format gputypes.TextureFormat
	clear  *gpucore.Color
	draws  []drawCall
}

// drawCall is one recorded DrawQuad with its uniform snapshot.
type drawCall struct {
	prog     *program
	pipeline hal.RenderPipeline
	uniforms []byte
	source   *texture
}

// openPass returns the pass recording into the bound target, starting a
// new one when the target changed.
func (d *Device) openPass() (*pass, error) {
	if d.open != nil {
		return d.open, nil
	}
	var (
		view   hal.TextureView
		format gputypes.TextureFormat
	)
	if d.bound == gpucore.InvalidID {
		v, f, err := d.ensureSurface()
		if err != nil {
			return nil, err
		}
		view, format = v, f
	} else {
		d.mu.Lock()
		fb, ok := d.framebuffers[d.bound]
		var t *texture
		if ok {
			t = d.textures[fb.color]
		}
		d.mu.Unlock()
		if t == nil {
			return nil, fmt.Errorf("%w: framebuffer %d", ErrIncompleteFramebuffer, d.bound)
		}
		view, format = t.view, t.format
	}
	p := &pass{target: d.bound, view: view, format: format}
	d.passes = append(d.passes, p)
	d.open = p
	return p, nil
}

// BindFramebuffer selects the draw target. InvalidID selects the surface.
func (d *Device) BindFramebuffer(id gpucore.FramebufferID) {
	if id != d.bound {
		d.open = nil
	}
	d.bound = id
}

// Viewport records the draw area. Draws always cover the whole target, so
// for framebuffers this only tracks the size; for the internal surface a
// size change reallocates it.
func (d *Device) Viewport(width, height int) {
	d.viewW, d.viewH = width, height
	if d.bound != gpucore.InvalidID || d.surfaceExternal {
		return
	}
	if d.surfaceTex != nil && (uint32(width) != d.surfaceW || uint32(height) != d.surfaceH) { //nolint:gosec // sizes are positive
		d.releaseSurface()
	}
}

// Clear records a clear of the bound target. A clear after draws starts
// a new pass.
func (d *Device) Clear(c gpucore.Color) {
	p, err := d.openPass()
	if err != nil {
		d.log.Debug("native: clear skipped", "err", err)
		return
	}
	if len(p.draws) > 0 {
		d.open = nil
		if p, err = d.openPass(); err != nil {
			return
		}
	}
	p.clear = &c
}

// UseProgram selects the current program.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	d.current = d.programs[id]
	d.mu.Unlock()
}

// BindTexture binds a texture to a sampling unit. Only unit 0 is read,
// by composite programs.
func (d *Device) BindTexture(unit int, id gpucore.TextureID) {
	d.units[unit] = id
}

// DrawQuad records a full-target quad with the current program and a copy
// of its uniform block.
func (d *Device) DrawQuad() error {
	if d.destroyed {
		return ErrReleased
	}
	prog := d.current
	if prog == nil {
		return errors.New("native: no program in use")
	}
	p, err := d.openPass()
	if err != nil {
		return err
	}

	var src *texture
	if prog.desc.Kind == gpucore.ProgramComposite {
		d.mu.Lock()
		src = d.textures[d.units[0]]
		d.mu.Unlock()
		if src == nil {
			return fmt.Errorf("native: composite %q: no texture bound to unit 0", prog.desc.Label)
		}
	}
	pipeline, err := d.pipelineFor(prog, p.format)
	if err != nil {
		return err
	}
	p.draws = append(p.draws, drawCall{
		prog:     prog,
		pipeline: pipeline,
		uniforms: bytes.Clone(prog.uniforms),
		source:   src,
	})
	return nil
}

// frameResources are the per-draw buffers and bind groups of one frame.
type frameResources struct {
	buffers []hal.Buffer
	groups  []hal.BindGroup
}

func (r *frameResources) release(device hal.Device) {
	for _, g := range r.groups {
		device.DestroyBindGroup(g)
	}
	for _, b := range r.buffers {
		device.DestroyBuffer(b)
	}
	r.groups, r.buffers = nil, nil
}

// bindDraw uploads a draw's uniforms and creates its bind group.
func (d *Device) bindDraw(dr *drawCall, res *frameResources) (hal.BindGroup, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "shaderwall_uniforms",
		Size:  uint64(len(dr.uniforms)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create uniform buffer: %w", err)
	}
	res.buffers = append(res.buffers, buf)
	if err := d.queue.WriteBuffer(buf, 0, dr.uniforms); err != nil {
		return nil, fmt.Errorf("native: write uniforms for %q: %w", dr.prog.desc.Label, err)
	}

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(len(dr.uniforms)),
		}},
	}
	if dr.source != nil {
		sampler, err := d.samplerFor(dr.source.desc)
		if err != nil {
			return nil, err
		}
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: dr.source.view.NativeHandle(),
			}},
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: sampler.NativeHandle(),
			}},
		)
	}
	groupLayout, _ := d.layouts.forKind(dr.prog.desc.Kind)
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "shaderwall_" + dr.prog.desc.Label + "_bind",
		Layout:  groupLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group: %w", err)
	}
	res.groups = append(res.groups, group)
	return group, nil
}

// Flush encodes every recorded pass into one command buffer, submits it
// and waits for the GPU.
func (d *Device) Flush() error {
	if d.destroyed {
		return ErrReleased
	}
	passes := d.passes
	d.passes, d.open = nil, nil
	defer d.releaseRetired()

	d.frames++
	if len(passes) == 0 {
		return nil
	}

	var res frameResources
	defer res.release(d.device)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "shaderwall_encoder",
	})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("shaderwall_frame"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	draws := 0
	for _, p := range passes {
		if p.clear == nil && len(p.draws) == 0 {
			continue
		}
		groups := make([]hal.BindGroup, len(p.draws))
		for i := range p.draws {
			g, err := d.bindDraw(&p.draws[i], &res)
			if err != nil {
				encoder.DiscardEncoding()
				return err
			}
			groups[i] = g
		}

		att := hal.RenderPassColorAttachment{
			View:    p.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if p.clear != nil {
			att.LoadOp = gputypes.LoadOpClear
			att.ClearValue = gputypes.Color{
				R: float64(p.clear.R), G: float64(p.clear.G),
				B: float64(p.clear.B), A: float64(p.clear.A),
			}
		}
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:            fmt.Sprintf("shaderwall_pass_%d", p.target),
			ColorAttachments: []hal.RenderPassColorAttachment{att},
		})
		for i := range p.draws {
			rp.SetPipeline(p.draws[i].pipeline)
			rp.SetBindGroup(0, groups[i], nil)
			rp.Draw(6, 1, 0, 0)
		}
		rp.End()
		draws += len(p.draws)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	d.submitted = idx
	if err := d.waitSubmission(idx); err != nil {
		return err
	}
	d.log.Debug("native: frame submitted", "frame", d.frames, "submission", idx, "passes", len(passes), "draws", draws)
	return nil
}

// waitSubmission blocks until the queue reports submission idx complete.
func (d *Device) waitSubmission(idx uint64) error {
	deadline := time.Now().Add(submitTimeout)
	for d.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("native: wait for GPU: submission %d not complete after %v", idx, submitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// discardPasses drops recorded work without submitting it.
func (d *Device) discardPasses() {
	d.passes, d.open = nil, nil
	d.releaseRetired()
}
