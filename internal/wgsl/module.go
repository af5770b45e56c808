package wgsl

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
)

//go:embed shaders/prelude.wgsl.tmpl
var preludeTemplate string

//go:embed shaders/composite.wgsl
var compositeSource string

var prelude = template.Must(template.New("prelude").Parse(preludeTemplate))

// EntryPoint is the function every effect source defines:
//
//	fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32>
//
// frag is the fragment position in pixels and uv its normalized position,
// both with a bottom-left origin. The result is straight-alpha RGBA.
const EntryPoint = "effect"

// EffectModule returns the complete WGSL module for an effect: the
// generated prelude (uniform block, vertex stage and fs_main) followed by
// the effect source, along with the uniform layout.
func EffectModule(d *effect.Descriptor, source string) (string, gpucore.UniformLayout, error) {
	layout := EffectLayout(d)
	var b strings.Builder
	err := prelude.Execute(&b, struct {
		ID     string
		Fields []gpucore.UniformField
	}{d.ID, layout.Fields})
	if err != nil {
		return "", gpucore.UniformLayout{}, err
	}
	b.WriteString("\n")
	b.WriteString(source)
	return b.String(), layout, nil
}

// EffectProgram builds the program descriptor for an effect.
func EffectProgram(d *effect.Descriptor, source string) (gpucore.ProgramDesc, error) {
	src, layout, err := EffectModule(d, source)
	if err != nil {
		return gpucore.ProgramDesc{}, err
	}
	return gpucore.ProgramDesc{
		Label:    d.ID,
		Kind:     gpucore.ProgramEffect,
		Source:   src,
		Uniforms: layout,
	}, nil
}

// CompositeProgram returns the program descriptor for the composite pass.
func CompositeProgram() gpucore.ProgramDesc {
	return gpucore.ProgramDesc{
		Label:    "composite",
		Kind:     gpucore.ProgramComposite,
		Source:   compositeSource,
		Uniforms: CompositeLayout(),
	}
}
