//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderwall/gpucore"
)

// layouts holds the bind group and pipeline layouts shared by all
// programs of one kind.
//
// Effect programs bind their uniform block at binding 0. Composite
// programs add the source texture (binding 1) and its sampler (binding 2).
type layouts struct {
	effectGroup    hal.BindGroupLayout
	effectPipe     hal.PipelineLayout
	compositeGroup hal.BindGroupLayout
	compositePipe  hal.PipelineLayout
}

func (l *layouts) create(device hal.Device) error {
	uniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}

	var err error
	l.effectGroup, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "shaderwall_effect_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniform},
	})
	if err != nil {
		return fmt.Errorf("native: create effect bind group layout: %w", err)
	}
	l.effectPipe, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "shaderwall_effect_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.effectGroup},
	})
	if err != nil {
		return fmt.Errorf("native: create effect pipeline layout: %w", err)
	}

	l.compositeGroup, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "shaderwall_composite_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform,
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create composite bind group layout: %w", err)
	}
	l.compositePipe, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "shaderwall_composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.compositeGroup},
	})
	if err != nil {
		return fmt.Errorf("native: create composite pipeline layout: %w", err)
	}
	return nil
}

// destroy releases the layouts in reverse creation order.
func (l *layouts) destroy(device hal.Device) {
	if l.compositePipe != nil {
		device.DestroyPipelineLayout(l.compositePipe)
		l.compositePipe = nil
	}
	if l.compositeGroup != nil {
		device.DestroyBindGroupLayout(l.compositeGroup)
		l.compositeGroup = nil
	}
	if l.effectPipe != nil {
		device.DestroyPipelineLayout(l.effectPipe)
		l.effectPipe = nil
	}
	if l.effectGroup != nil {
		device.DestroyBindGroupLayout(l.effectGroup)
		l.effectGroup = nil
	}
}

func (l *layouts) forKind(k gpucore.ProgramKind) (hal.BindGroupLayout, hal.PipelineLayout) {
	if k == gpucore.ProgramComposite {
		return l.compositeGroup, l.compositePipe
	}
	return l.effectGroup, l.effectPipe
}

// program is a linked shader module with one render pipeline per target
// format it has been drawn into.
type program struct {
	desc      gpucore.ProgramDesc
	module    hal.ShaderModule
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline

	// uniforms is the current uniform block, copied into each draw.
	uniforms []byte
}

func (p *program) destroy(device hal.Device) {
	for f, pl := range p.pipelines {
		device.DestroyRenderPipeline(pl)
		delete(p.pipelines, f)
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// pipelineFor returns the program's pipeline for a target format,
// creating it on first use. Effect programs replace the target contents;
// composite programs blend with premultiplied alpha.
func (d *Device) pipelineFor(p *program, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[format]; ok {
		return pl, nil
	}

	target := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if p.desc.Kind == gpucore.ProgramComposite {
		premulBlend := gputypes.BlendStatePremultiplied()
		target.Blend = &premulBlend
	}
	_, pipeLayout := d.layouts.forKind(p.desc.Kind)

	pl, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "shaderwall_" + p.desc.Label,
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline for %q: %w", p.desc.Label, err)
	}
	p.pipelines[format] = pl
	return pl, nil
}
