// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/program"
	"github.com/gogpu/shaderwall/target"
)

// FrameStats describes the most recent frame.
type FrameStats struct {
	// Frame is the 1-based frame number.
	Frame uint64

	// Time is the clock value the frame was rendered at.
	Time float64

	// Layers is the number of active layers.
	Layers int

	// Rendered counts layers drawn and composited.
	Rendered int

	// Skipped counts active layers left out of the frame.
	Skipped int
}

// Renderer orchestrates the layer and composite passes of every frame.
type Renderer struct {
	dev      gpucore.Device
	log      *slog.Logger
	clear    gpucore.Color
	builder  *program.DeviceCompiler
	programs *program.Cache
	targets  *target.Manager

	state atomic.Uint32

	snap          *catalog.Snapshot
	width, height int
	clock         float64
	frames        uint64
	stats         FrameStats
	composite     gpucore.ProgramID
	background    gpucore.TextureID
	slotsDirty    bool

	// failed holds shaders whose compile failed. They are not retried until
	// the slot table is rebuilt or the catalog is swapped.
	failed map[string]struct{}

	mu            sync.Mutex
	pendingLayers []program.Layer
	layersChanged bool
	pendingSnap   *catalog.Snapshot
	pendingBG     image.Image
	backgroundSet bool
}

// New creates a renderer for dev that resolves effects through snap.
// Nothing is allocated on the device until Setup.
func New(dev gpucore.Device, snap *catalog.Snapshot, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = shaderwall.Logger()
	}

	r := &Renderer{
		dev:   dev,
		log:   o.log,
		clear:  o.clearColor,
		snap:   snap,
		failed: make(map[string]struct{}),
	}
	r.builder = &program.DeviceCompiler{Device: dev, Catalog: r}
	compiler := o.compiler
	if compiler == nil {
		compiler = r.builder
	}
	r.programs = program.NewCache(compiler, dev, program.WithLogger(o.log))
	r.targets = target.NewManager(dev, target.WithLogger(o.log))
	if o.layers != nil {
		r.UpdateLayers(o.layers)
	}
	return r
}

// Snapshot returns the catalog snapshot the renderer currently uses.
func (r *Renderer) Snapshot() *catalog.Snapshot { return r.snap }

// State returns the lifecycle state. It is safe to call from any goroutine.
func (r *Renderer) State() State { return State(r.state.Load()) }

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() uint64 { return r.frames }

// LastFrame returns statistics of the most recent frame.
func (r *Renderer) LastFrame() FrameStats { return r.stats }

// Size returns the surface size.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Programs returns the program cache.
func (r *Renderer) Programs() *program.Cache { return r.programs }

// Targets returns the render target manager.
func (r *Renderer) Targets() *target.Manager { return r.targets }

// UpdateLayers replaces the layer requests. Safe for concurrent use; the
// change applies from the next frame.
func (r *Renderer) UpdateLayers(layers []program.Layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingLayers = append([]program.Layer(nil), layers...)
	r.layersChanged = true
}

// SetCatalog hands over a new catalog snapshot. Safe for concurrent use;
// the swap happens at the next frame and releases every cached program so
// changed sources are recompiled.
func (r *Renderer) SetCatalog(snap *catalog.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingSnap = snap
}

// SetBackground sets the image drawn under all layers. Nil removes it.
// Safe for concurrent use; the upload happens at the next frame.
func (r *Renderer) SetBackground(img image.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingBG = img
	r.backgroundSet = true
}

// Setup handles context creation: it builds the composite program,
// compiles the active layers and allocates their targets.
func (r *Renderer) Setup(width, height int) error {
	switch r.State() {
	case StateReleased:
		return ErrReleased
	case StateReady:
		return r.Resize(width, height)
	}

	r.width, r.height = width, height
	r.applyPending()

	comp, err := r.builder.CompileComposite()
	if err != nil {
		return fmt.Errorf("renderer: setup: %w", err)
	}
	r.composite = comp

	r.slotsDirty = true
	active := r.programs.Active()
	r.syncSlots(len(active))
	for _, l := range active {
		r.program(l.ShaderID)
	}

	r.state.Store(uint32(StateReady))
	r.log.Info("renderer: ready", "width", width, "height", height, "layers", len(active))
	return nil
}

// Resize handles a surface size change: every target is recreated at the
// new size. Before Setup it only records the size.
func (r *Renderer) Resize(width, height int) error {
	if r.State() == StateReleased {
		return ErrReleased
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.width, r.height = width, height
	if r.State() == StateReady {
		r.targets.Resize(width, height)
		r.slotsDirty = true
	}
	r.log.Debug("renderer: resized", "width", width, "height", height)
	return nil
}

// Release handles context destruction. It frees every device object the
// renderer owns. Release is idempotent and terminal.
func (r *Renderer) Release() {
	if r.State() == StateReleased {
		return
	}
	r.programs.Release()
	r.targets.Release()
	if r.composite != gpucore.InvalidID {
		r.dev.DestroyProgram(r.composite)
		r.composite = gpucore.InvalidID
	}
	if r.background != gpucore.InvalidID {
		r.dev.DestroyTexture(r.background)
		r.background = gpucore.InvalidID
	}
	r.state.Store(uint32(StateReleased))
	r.log.Info("renderer: released", "frames", r.frames)
}

// applyPending moves host inputs into render state. It runs at the start of
// Setup and of every frame.
func (r *Renderer) applyPending() {
	r.mu.Lock()
	layers, layersChanged := r.pendingLayers, r.layersChanged
	snap := r.pendingSnap
	bg, bgSet := r.pendingBG, r.backgroundSet
	r.pendingLayers, r.layersChanged = nil, false
	r.pendingSnap = nil
	r.pendingBG, r.backgroundSet = nil, false
	r.mu.Unlock()

	if snap != nil && snap != r.snap {
		r.snap = snap
		r.programs.Release()
		clear(r.failed)
		r.log.Info("renderer: catalog swapped", "effects", snap.Len())
	}
	if layersChanged {
		r.programs.Update(layers)
		r.slotsDirty = true
	}
	if bgSet {
		r.uploadBackground(bg)
	}
}

func (r *Renderer) uploadBackground(img image.Image) {
	if r.background != gpucore.InvalidID {
		r.dev.DestroyTexture(r.background)
		r.background = gpucore.InvalidID
	}
	if img == nil {
		return
	}
	b := img.Bounds()
	tex, err := r.dev.CreateTexture(gpucore.TextureDesc{
		Label:   "background",
		Width:   b.Dx(),
		Height:  b.Dy(),
		Format:  gpucore.TextureFormatRGBA8Unorm,
		Filter:  gpucore.FilterLinear,
		Address: gpucore.AddressClampToEdge,
		Usage:   gpucore.TextureUsageTextureBinding | gpucore.TextureUsageCopyDst,
	})
	if err != nil {
		r.log.Warn("renderer: background texture failed", "err", err)
		return
	}
	if err := r.dev.WriteTexture(tex, img); err != nil {
		r.dev.DestroyTexture(tex)
		r.log.Warn("renderer: background upload failed", "err", err)
		return
	}
	r.background = tex
}

// syncSlots keeps exactly n targets, one per active layer.
func (r *Renderer) syncSlots(n int) {
	if !r.slotsDirty {
		return
	}
	r.slotsDirty = false
	clear(r.failed)
	for _, s := range r.targets.Slots() {
		if s >= n {
			r.targets.Destroy(s)
		}
	}
	for i := range n {
		if r.targets.TextureOf(i) == gpucore.InvalidID {
			r.targets.Create(i, r.width, r.height)
		}
	}
}
