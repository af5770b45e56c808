package wgsl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
)

func testDescriptor() *effect.Descriptor {
	return &effect.Descriptor{
		ID: "snow",
		Parameters: []effect.Parameter{
			{ID: "u_speed", Type: effect.TypeFloat},
			{ID: "u_count", Type: effect.TypeInt},
			{ID: "u_wind", Type: effect.TypeBool},
			{ID: "u_tint", Type: effect.TypeColor},
			{ID: "u_drift", Type: effect.TypeVec2},
			{ID: "u_axis", Type: effect.TypeVec3},
		},
	}
}

func TestEffectLayout(t *testing.T) {
	got := EffectLayout(testDescriptor())
	want := gpucore.UniformLayout{
		Fields: []gpucore.UniformField{
			{Name: "u_time", Type: gpucore.UniformFloat, Offset: 0},
			{Name: "u_depth", Type: gpucore.UniformFloat, Offset: 4},
			{Name: "u_resolution", Type: gpucore.UniformVec2, Offset: 8},
			{Name: "u_parallax", Type: gpucore.UniformVec2, Offset: 16},
			{Name: "u_speed", Type: gpucore.UniformFloat, Offset: 24},
			{Name: "u_count", Type: gpucore.UniformInt, Offset: 28},
			{Name: "u_wind", Type: gpucore.UniformInt, Offset: 32},
			{Name: "u_tint", Type: gpucore.UniformVec4, Offset: 48},
			{Name: "u_drift", Type: gpucore.UniformVec2, Offset: 64},
			{Name: "u_axis", Type: gpucore.UniformVec3, Offset: 80},
		},
		Size: 96,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EffectLayout() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeLayout(t *testing.T) {
	l := CompositeLayout()
	if l.Size != 16 {
		t.Errorf("Size = %d, want 16", l.Size)
	}
	if f, ok := l.Field(UniformFlipY); !ok || f.Offset != 4 {
		t.Errorf("Field(u_flip_y) = %+v, %v", f, ok)
	}
}

func TestEffectModule(t *testing.T) {
	src, layout, err := EffectModule(testDescriptor(), "fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32> { return vec4<f32>(1.0); }")
	if err != nil {
		t.Fatalf("EffectModule() error = %v", err)
	}
	for _, want := range []string{
		"struct EffectUniforms",
		"u_tint: vec4<f32>,",
		"u_count: i32,",
		"fn vs_main",
		"fn fs_main",
		"return effect(",
		"fn effect(frag",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("module is missing %q", want)
		}
	}
	if len(layout.Fields) != 10 {
		t.Errorf("layout has %d fields, want 10", len(layout.Fields))
	}
}

func TestCompositeProgram(t *testing.T) {
	p := CompositeProgram()
	if p.Kind != gpucore.ProgramComposite {
		t.Errorf("Kind = %v, want composite", p.Kind)
	}
	if !strings.Contains(p.Source, "textureSample") {
		t.Error("composite source does not sample a texture")
	}
}

// TestShaderCompilation checks that generated modules compile with naga.
func TestShaderCompilation(t *testing.T) {
	effectSrc, _, err := EffectModule(testDescriptor(), `
fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32> {
    let k = fract(uniforms.u_time * uniforms.u_speed);
    return vec4<f32>(uniforms.u_tint.rgb * k, uniforms.u_tint.a);
}
`)
	if err != nil {
		t.Fatal(err)
	}

	for name, src := range map[string]string{
		"effect":    effectSrc,
		"composite": CompositeProgram().Source,
	} {
		t.Run(name, func(t *testing.T) {
			n, err := Validate(src)
			if err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
					t.Skipf("Skipping: naga feature not yet implemented: %v", err)
				}
				t.Fatalf("Validate() error = %v", err)
			}
			if n == 0 {
				t.Error("SPIR-V output is empty")
			}
		})
	}
}

func TestValidateRejectsBrokenSource(t *testing.T) {
	if _, err := Validate("fn broken( {"); err == nil {
		t.Error("Validate() accepted malformed WGSL")
	}
}
