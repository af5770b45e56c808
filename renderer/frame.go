// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"fmt"

	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/internal/wgsl"
	"github.com/gogpu/shaderwall/program"
)

var transparent = gpucore.Color{}

// RenderFrame renders one frame at time t in seconds. The clock never
// moves backwards: a t below the previous frame's time reuses it.
//
// Layer failures are logged and skipped. The returned error reports only
// an invalid lifecycle state, a failed submission or a recovered panic.
func (r *Renderer) RenderFrame(t float64) (err error) {
	switch r.State() {
	case StateReleased:
		return ErrReleased
	case StateReady:
	default:
		return ErrNotReady
	}

	r.state.Store(uint32(StateRendering))
	defer func() {
		if p := recover(); p != nil {
			if _, bound := r.targets.Bound(); bound {
				r.targets.Unbind()
			}
			r.log.Error("renderer: frame panicked", "frame", r.frames, "panic", p)
			err = fmt.Errorf("renderer: frame %d: panic: %v", r.frames, p)
		}
		r.state.Store(uint32(StateReady))
	}()

	r.applyPending()
	r.clock = max(r.clock, t)
	r.frames++

	active := r.programs.Active()
	r.syncSlots(len(active))
	stats := FrameStats{Frame: r.frames, Time: r.clock, Layers: len(active)}

	rendered := make([]int, 0, len(active))
	for i := range active {
		if r.drawLayer(i, &active[i]) {
			rendered = append(rendered, i)
		}
	}
	stats.Rendered = len(rendered)
	stats.Skipped = len(active) - len(rendered)

	r.compositeLayers(active, rendered)

	r.stats = stats
	if err := r.dev.Flush(); err != nil {
		return fmt.Errorf("renderer: frame %d: %w", r.frames, err)
	}
	return nil
}

// drawLayer renders layer l into slot i and reports whether it succeeded.
func (r *Renderer) drawLayer(i int, l *program.Layer) bool {
	prog := r.program(l.ShaderID)
	if prog == gpucore.InvalidID {
		r.log.Debug("renderer: layer skipped, no program", "slot", i, "shader", l.ShaderID)
		return false
	}
	if err := r.targets.Bind(i); err != nil {
		r.log.Debug("renderer: layer skipped, no target", "slot", i, "shader", l.ShaderID, "err", err)
		return false
	}
	defer r.targets.Unbind()

	r.dev.Clear(transparent)
	r.dev.UseProgram(prog)
	r.setStandardUniforms(l)
	if d, ok := r.snap.Get(l.ShaderID); ok {
		r.setParameters(d, l)
	}
	if err := r.dev.DrawQuad(); err != nil {
		r.log.Warn("renderer: layer draw failed", "slot", i, "shader", l.ShaderID, "err", err)
		return false
	}
	return true
}

// compositeLayers draws the background and then every rendered layer in
// ascending order onto the visible surface.
func (r *Renderer) compositeLayers(active []program.Layer, rendered []int) {
	r.dev.BindFramebuffer(gpucore.InvalidID)
	r.dev.Viewport(r.width, r.height)
	r.dev.Clear(r.clear)
	if r.composite == gpucore.InvalidID {
		return
	}
	r.dev.UseProgram(r.composite)

	if r.background != gpucore.InvalidID {
		r.blit(r.background, 1, true)
	}
	for _, i := range rendered {
		r.blit(r.targets.TextureOf(i), active[i].ClampedOpacity(), false)
	}
}

func (r *Renderer) blit(tex gpucore.TextureID, opacity float32, flip bool) {
	var flipY float32
	if flip {
		flipY = 1
	}
	r.dev.SetFloat(wgsl.UniformOpacity, opacity)
	r.dev.SetFloat(wgsl.UniformFlipY, flipY)
	r.dev.BindTexture(0, tex)
	if err := r.dev.DrawQuad(); err != nil {
		r.log.Warn("renderer: composite draw failed", "texture", uint64(tex), "err", err)
	}
}

func (r *Renderer) setStandardUniforms(l *program.Layer) {
	r.dev.SetFloat(effect.UniformTime, float32(r.clock))
	r.dev.SetVec2(effect.UniformResolution, [2]float32{float32(r.width), float32(r.height)})
	r.dev.SetVec2(effect.UniformParallax, [2]float32{})
	r.dev.SetFloat(effect.UniformDepth, float32(l.Depth))
}

// setParameters uploads every declared parameter: the layer's override
// when it has the declared type, the default otherwise.
func (r *Renderer) setParameters(d *effect.Descriptor, l *program.Layer) {
	for i := range d.Parameters {
		p := &d.Parameters[i]
		v := p.Default
		if o, ok := l.Overrides[p.ID]; ok {
			if p.Accepts(o) {
				v = o
			} else {
				r.log.Debug("renderer: override type mismatch, using default",
					"shader", d.ID, "param", p.ID, "type", p.Type.String())
			}
		}
		if err := r.setParameter(p, v); err != nil {
			r.log.Debug("renderer: parameter not set", "shader", d.ID, "param", p.ID, "err", err)
		}
	}
}

// setParameter selects the typed setter for the parameter type.
func (r *Renderer) setParameter(p *effect.Parameter, v effect.Value) error {
	switch p.Type {
	case effect.TypeInt:
		if iv, ok := v.(effect.IntVal); ok {
			r.dev.SetInt(p.ID, int32(iv))
			return nil
		}
	case effect.TypeBool:
		if bv, ok := v.(effect.BoolVal); ok {
			var b int32
			if bv {
				b = 1
			}
			r.dev.SetInt(p.ID, b)
			return nil
		}
	}

	f, err := p.Floats(v)
	if err != nil {
		return err
	}
	switch p.Type {
	case effect.TypeFloat:
		r.dev.SetFloat(p.ID, f[0])
	case effect.TypeVec2:
		r.dev.SetVec2(p.ID, [2]float32{f[0], f[1]})
	case effect.TypeVec3:
		r.dev.SetVec3(p.ID, [3]float32{f[0], f[1], f[2]})
	case effect.TypeVec4, effect.TypeColor:
		r.dev.SetVec4(p.ID, f)
	default:
		return fmt.Errorf("unsupported parameter type %s", p.Type)
	}
	return nil
}

// program returns the compiled program of a shader, compiling it on first
// use. A shader that failed to compile stays skipped until the failure set
// is cleared.
func (r *Renderer) program(shaderID string) gpucore.ProgramID {
	if _, ok := r.failed[shaderID]; ok {
		return gpucore.InvalidID
	}
	prog := r.programs.GetOrCreate(shaderID)
	if prog == gpucore.InvalidID {
		r.failed[shaderID] = struct{}{}
	}
	return prog
}
