//go:build !nogpu

package native

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderwall/backend"
	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/internal/wgsl"
	"github.com/gogpu/shaderwall/program"
	"github.com/gogpu/shaderwall/renderer"
)

const tintSource = `/*
 * @shader Tint
 * @id tint
 * @version 1.0.0
 * @param u_tint color #FF8000
 * @param u_count int 4
 */
fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32> {
    return uniforms.u_tint * f32(uniforms.u_count) * 0.25;
}
`

func newNoop(t *testing.T) *Device {
	t.Helper()
	d, err := NewNoop()
	if err != nil {
		t.Fatalf("NewNoop() error = %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

// skipUnsupported skips when naga lacks a feature the shaders use.
func skipUnsupported(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
}

func tintProgram(t *testing.T) gpucore.ProgramDesc {
	t.Helper()
	desc, err := effect.Parse(tintSource, "tint.wgsl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pd, err := wgsl.EffectProgram(desc, tintSource)
	if err != nil {
		t.Fatalf("EffectProgram() error = %v", err)
	}
	return pd
}

func createProgram(t *testing.T, d *Device, desc gpucore.ProgramDesc) gpucore.ProgramID {
	t.Helper()
	id, err := d.CreateProgram(desc)
	if err != nil {
		skipUnsupported(t, err)
		t.Fatalf("CreateProgram(%q) error = %v", desc.Label, err)
	}
	return id
}

func renderTarget(t *testing.T, d *Device, w, h int) (gpucore.FramebufferID, gpucore.TextureID) {
	t.Helper()
	tex, err := d.CreateTexture(gpucore.TextureDesc{
		Label:  "target",
		Width:  w,
		Height: h,
		Usage:  gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	fb, err := d.CreateFramebuffer(tex)
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	if err := d.FramebufferStatus(fb); err != nil {
		t.Fatalf("FramebufferStatus() = %v", err)
	}
	return fb, tex
}

func TestNewNoopDestroyIdempotent(t *testing.T) {
	d, err := NewNoop()
	if err != nil {
		t.Fatalf("NewNoop() error = %v", err)
	}
	d.Destroy()
	d.Destroy()
	if err := d.Flush(); !errors.Is(err, ErrReleased) {
		t.Errorf("Flush() after Destroy = %v, want ErrReleased", err)
	}
}

func TestNewRejectsProvider(t *testing.T) {
	if _, err := New(struct{}{}); err == nil {
		t.Error("New(non-HAL provider) succeeded")
	}
}

func TestRegisteredFactories(t *testing.T) {
	if !backend.IsRegistered(backend.BackendNative) || !backend.IsRegistered(backend.BackendNoop) {
		t.Fatalf("Available() = %v, want native and noop", backend.Available())
	}
	if _, err := backend.Open(backend.BackendNative, backend.Config{}); !errors.Is(err, backend.ErrNoProvider) {
		t.Errorf("Open(native) without provider = %v, want ErrNoProvider", err)
	}
	dev, err := backend.Open(backend.BackendNoop, backend.Config{})
	if err != nil {
		t.Fatalf("Open(noop) error = %v", err)
	}
	dev.Destroy()
}

func TestCreateProgramRejectsInvalidWGSL(t *testing.T) {
	d := newNoop(t)
	_, err := d.CreateProgram(gpucore.ProgramDesc{Label: "broken", Source: "fn effect( {"})
	if err == nil {
		t.Fatal("CreateProgram() with invalid WGSL succeeded")
	}
	if p, _, _ := d.Live(); p != 0 {
		t.Errorf("live programs = %d after failed compile, want 0", p)
	}
}

func TestUniformBlockWrites(t *testing.T) {
	d := newNoop(t)
	desc := tintProgram(t)
	id := createProgram(t, d, desc)

	d.UseProgram(id)
	d.SetFloat(effect.UniformTime, 2.5)
	d.SetVec4("u_tint", [4]float32{1, 0.5, 0, 1})
	d.SetInt("u_count", 7)
	d.SetFloat("u_unknown", 9)

	p := d.programs[id]
	if len(p.uniforms) != desc.Uniforms.Size {
		t.Fatalf("uniform block = %d bytes, want %d", len(p.uniforms), desc.Uniforms.Size)
	}
	readF := func(name string, i int) float32 {
		f, ok := desc.Uniforms.Field(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(p.uniforms[f.Offset+4*i:]))
	}
	if got := readF(effect.UniformTime, 0); got != 2.5 {
		t.Errorf("u_time = %v, want 2.5", got)
	}
	if got := readF("u_tint", 1); got != 0.5 {
		t.Errorf("u_tint.g = %v, want 0.5", got)
	}
	f, _ := desc.Uniforms.Field("u_count")
	if got := int32(binary.LittleEndian.Uint32(p.uniforms[f.Offset:])); got != 7 {
		t.Errorf("u_count = %d, want 7", got)
	}
}

func TestDrawSnapshotsUniforms(t *testing.T) {
	d := newNoop(t)
	id := createProgram(t, d, tintProgram(t))
	fb, _ := renderTarget(t, d, 8, 8)

	d.BindFramebuffer(fb)
	d.Viewport(8, 8)
	d.Clear(gpucore.Color{})
	d.UseProgram(id)
	d.SetFloat(effect.UniformTime, 1)
	if err := d.DrawQuad(); err != nil {
		t.Fatalf("DrawQuad() error = %v", err)
	}
	d.SetFloat(effect.UniformTime, 2)
	if err := d.DrawQuad(); err != nil {
		t.Fatalf("DrawQuad() error = %v", err)
	}

	if len(d.passes) != 1 || len(d.passes[0].draws) != 2 {
		t.Fatalf("recorded %d passes, want 1 with 2 draws", len(d.passes))
	}
	a, b := d.passes[0].draws[0].uniforms, d.passes[0].draws[1].uniforms
	if string(a) == string(b) {
		t.Error("draws share the same uniform snapshot")
	}
	if d.passes[0].clear == nil {
		t.Error("pass lost its clear")
	}

	if err := d.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(d.passes) != 0 || d.Frames() != 1 {
		t.Errorf("after Flush: %d passes, %d frames", len(d.passes), d.Frames())
	}
}

// lagQueue reports each submission complete only after a few polls.
type lagQueue struct {
	hal.Queue
	lag   int
	polls int
	done  uint64
}

func (q *lagQueue) PollCompleted() uint64 {
	q.polls++
	if q.polls%q.lag == 0 {
		q.done = q.Queue.PollCompleted()
	}
	return q.done
}

func TestFlushWaitsForSubmission(t *testing.T) {
	d := newNoop(t)
	q := &lagQueue{Queue: d.queue, lag: 3}
	d.queue = q
	id := createProgram(t, d, tintProgram(t))
	fb, _ := renderTarget(t, d, 4, 4)

	if err := d.Flush(); err != nil {
		t.Fatalf("empty Flush() error = %v", err)
	}
	if d.Submitted() != 0 || q.polls != 0 {
		t.Errorf("empty Flush submitted %d, polled %d times", d.Submitted(), q.polls)
	}

	for frame := uint64(1); frame <= 2; frame++ {
		d.BindFramebuffer(fb)
		d.Viewport(4, 4)
		d.UseProgram(id)
		if err := d.DrawQuad(); err != nil {
			t.Fatalf("DrawQuad() error = %v", err)
		}
		if err := d.Flush(); err != nil {
			t.Fatalf("Flush() error = %v", err)
		}
		if d.Submitted() != frame {
			t.Errorf("Submitted() = %d, want %d", d.Submitted(), frame)
		}
		if q.done < frame {
			t.Errorf("Flush returned before submission %d completed (completed %d)", frame, q.done)
		}
	}
	if d.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", d.Frames())
	}
}

func TestClearAfterDrawStartsPass(t *testing.T) {
	d := newNoop(t)
	id := createProgram(t, d, tintProgram(t))
	fb, _ := renderTarget(t, d, 4, 4)

	d.BindFramebuffer(fb)
	d.UseProgram(id)
	if err := d.DrawQuad(); err != nil {
		t.Fatalf("DrawQuad() error = %v", err)
	}
	d.Clear(gpucore.Color{A: 1})
	if len(d.passes) != 2 {
		t.Errorf("passes = %d, want 2", len(d.passes))
	}
	d.BindFramebuffer(gpucore.InvalidID)
	d.Viewport(4, 4)
	d.Clear(gpucore.Color{})
	if len(d.passes) != 3 || d.passes[2].target != gpucore.InvalidID {
		t.Errorf("surface pass not recorded: %d passes", len(d.passes))
	}
	if w, h := d.SurfaceSize(); w != 4 || h != 4 {
		t.Errorf("SurfaceSize() = %dx%d, want 4x4", w, h)
	}
}

func TestCompositeNeedsTexture(t *testing.T) {
	d := newNoop(t)
	id := createProgram(t, d, wgsl.CompositeProgram())
	d.Viewport(4, 4)
	d.UseProgram(id)
	if err := d.DrawQuad(); err == nil {
		t.Error("composite DrawQuad() without texture succeeded")
	}
}

func TestDrawWithoutProgram(t *testing.T) {
	d := newNoop(t)
	if err := d.DrawQuad(); err == nil {
		t.Error("DrawQuad() without program succeeded")
	}
}

func TestTextures(t *testing.T) {
	d := newNoop(t)

	if _, err := d.CreateTexture(gpucore.TextureDesc{Width: 0, Height: 4}); err == nil {
		t.Error("CreateTexture(0x4) succeeded")
	}
	tex, err := d.CreateTexture(gpucore.TextureDesc{Width: 2, Height: 2, Usage: gpucore.TextureUsageCopyDst | gpucore.TextureUsageTextureBinding})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	if err := d.WriteTexture(tex, img); err != nil {
		t.Errorf("WriteTexture() error = %v", err)
	}
	if err := d.WriteTexture(tex, image.NewNRGBA(image.Rect(0, 0, 3, 3))); err == nil {
		t.Error("WriteTexture() with wrong size succeeded")
	}

	fb, err := d.CreateFramebuffer(tex)
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	if err := d.FramebufferStatus(fb); !errors.Is(err, ErrIncompleteFramebuffer) {
		t.Errorf("FramebufferStatus(non-attachment) = %v, want ErrIncompleteFramebuffer", err)
	}

	d.DestroyFramebuffer(fb)
	d.DestroyTexture(tex)
	if _, n, f := d.Live(); n != 0 || f != 0 {
		t.Errorf("Live() = %d textures, %d framebuffers, want none", n, f)
	}
}

func TestMaxTextureSize(t *testing.T) {
	d, err := NewNoop(WithMaxTextureSize(16))
	if err != nil {
		t.Fatalf("NewNoop() error = %v", err)
	}
	defer d.Destroy()
	if _, err := d.CreateTexture(gpucore.TextureDesc{Width: 32, Height: 8}); err == nil {
		t.Error("CreateTexture() beyond the limit succeeded")
	}
}

func TestRendererOnNoop(t *testing.T) {
	d := newNoop(t)
	snap := catalog.New().Discover([]catalog.Source{{Ref: "tint.wgsl", Text: tintSource}})
	if snap.Len() != 1 {
		t.Fatalf("catalog failures: %v", snap.Failures())
	}
	r := renderer.New(d, snap, renderer.WithLayers([]program.Layer{
		{ShaderID: "tint", Enabled: true, Opacity: 0.5},
	}))
	defer r.Release()

	if err := r.Setup(16, 16); err != nil {
		skipUnsupported(t, err)
		t.Fatalf("Setup() error = %v", err)
	}
	if r.Programs().Len() == 0 {
		t.Skip("effect program did not compile on this naga version")
	}
	r.SetBackground(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	for i := range 3 {
		if err := r.RenderFrame(float64(i)); err != nil {
			t.Fatalf("RenderFrame(%d) error = %v", i, err)
		}
	}
	if st := r.LastFrame(); st.Rendered != 1 {
		t.Errorf("LastFrame() = %+v, want 1 rendered", st)
	}
	if d.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", d.Frames())
	}

	r.Release()
	if p, tx, fb := d.Live(); p != 0 || tx != 0 || fb != 0 {
		t.Errorf("Live() after Release = %d/%d/%d, want 0/0/0", p, tx, fb)
	}
}
