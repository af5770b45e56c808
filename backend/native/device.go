// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/backend"
	"github.com/gogpu/shaderwall/gpucore"
)

// DefaultMaxTextureSize is the largest texture dimension accepted unless
// configured otherwise. It matches the WebGPU default limit.
const DefaultMaxTextureSize = 8192

// Errors returned by the native device.
var (
	// ErrIncompleteFramebuffer is returned by FramebufferStatus for
	// targets that cannot be rendered to.
	ErrIncompleteFramebuffer = errors.New("native: incomplete framebuffer")

	// ErrReleased is returned by calls on a destroyed device.
	ErrReleased = errors.New("native: device destroyed")
)

func init() {
	backend.Register(backend.BackendNative, func(cfg backend.Config) (gpucore.Device, error) {
		if cfg.Provider == nil {
			return nil, backend.ErrNoProvider
		}
		return New(cfg.Provider, configOptions(cfg)...)
	})
	backend.Register(backend.BackendNoop, func(cfg backend.Config) (gpucore.Device, error) {
		return NewNoop(configOptions(cfg)...)
	})
}

func configOptions(cfg backend.Config) []Option {
	if cfg.Logger == nil {
		return nil
	}
	return []Option{WithLogger(cfg.Logger)}
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device logger. The default is shaderwall.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

// WithMaxTextureSize limits texture dimensions.
func WithMaxTextureSize(n int) Option {
	return func(d *Device) { d.maxTextureSize = n }
}

// WithSurfaceFormat sets the format of the visible surface. The default
// is RGBA8Unorm; window surfaces are usually BGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(d *Device) { d.surfaceFormat = f }
}

// Device is a gpucore.Device on a hal device and queue.
//
// Like every gpucore.Device it is driven from one render goroutine; the
// mutex only guards the resource tables against concurrent Destroy.
type Device struct {
	mu sync.Mutex

	log            *slog.Logger
	device         hal.Device
	queue          hal.Queue
	instance       hal.Instance // set when the device owns its hal device
	maxTextureSize int
	surfaceFormat  gputypes.TextureFormat
	destroyed      bool

	nextID       atomic.Uint64
	programs     map[gpucore.ProgramID]*program
	textures     map[gpucore.TextureID]*texture
	framebuffers map[gpucore.FramebufferID]*framebuffer

	layouts         layouts
	samplers        map[samplerKey]hal.Sampler
	retired         []*texture
	retiredPrograms []*program

	// Visible surface: a host view set with SetSurfaceTarget, or an
	// offscreen texture sized by Viewport.
	surfaceView        hal.TextureView
	surfaceExternal    bool
	surfaceTex         *texture
	surfaceW, surfaceH uint32

	bound        gpucore.FramebufferID
	viewW, viewH int
	current      *program
	units        map[int]gpucore.TextureID

	passes    []*pass
	open      *pass
	frames    int
	submitted uint64
}

var _ gpucore.Device = (*Device)(nil)

// New creates a device on the GPU of a host provider. The provider must
// expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, as gogpu's providers do. The hal device stays owned by the
// host.
func New(provider any, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}
	return newDevice(device, queue, nil, opts)
}

// NewNoop creates a device on the hal/noop adapter. It owns its hal
// device and releases it in Destroy.
func NewNoop(opts ...Option) (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("native: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("native: noop instance has no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open noop device: %w", err)
	}
	d, err := newDevice(openDev.Device, openDev.Queue, instance, opts)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue, instance hal.Instance, opts []Option) (*Device, error) {
	d := &Device{
		log:            shaderwall.Logger(),
		device:         device,
		queue:          queue,
		instance:       instance,
		maxTextureSize: DefaultMaxTextureSize,
		surfaceFormat:  gputypes.TextureFormatRGBA8Unorm,
		programs:       make(map[gpucore.ProgramID]*program),
		textures:       make(map[gpucore.TextureID]*texture),
		framebuffers:   make(map[gpucore.FramebufferID]*framebuffer),
		units:          make(map[int]gpucore.TextureID),
		samplers:       make(map[samplerKey]hal.Sampler),
	}
	for _, opt := range opts {
		opt(d)
	}
	// IDs start at 1; 0 is gpucore.InvalidID.
	d.nextID.Store(1)

	if err := d.layouts.create(device); err != nil {
		d.layouts.destroy(device)
		return nil, err
	}
	d.log.Debug("native: device ready", "owned", instance != nil, "surface_format", d.surfaceFormat)
	return d, nil
}

func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// SetSurfaceTarget makes view the visible surface. The caller keeps
// ownership of the view. A nil view returns to the internal offscreen
// surface.
func (d *Device) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	d.releaseSurface()
	if view != nil {
		d.surfaceView = view
		d.surfaceExternal = true
		d.surfaceW, d.surfaceH = width, height
	}
}

// SurfaceSize returns the size of the visible surface.
func (d *Device) SurfaceSize() (width, height int) {
	return int(d.surfaceW), int(d.surfaceH)
}

// Frames returns the number of flushed frames.
func (d *Device) Frames() int { return d.frames }

// Submitted returns the queue submission index of the last frame that
// carried GPU work. It is 0 before the first such frame.
func (d *Device) Submitted() uint64 { return d.submitted }

// Destroy releases every resource. A device created by NewNoop also
// destroys its hal device. Destroy is idempotent.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.discardPasses()
	d.releaseSurface()

	for id, p := range d.programs {
		p.destroy(d.device)
		delete(d.programs, id)
	}
	for id := range d.framebuffers {
		delete(d.framebuffers, id)
	}
	for id, t := range d.textures {
		t.destroy(d.device)
		delete(d.textures, id)
	}
	d.releaseRetired()
	for k, s := range d.samplers {
		d.device.DestroySampler(s)
		delete(d.samplers, k)
	}
	d.layouts.destroy(d.device)
	d.current = nil
	clear(d.units)

	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
		d.instance = nil
	}
	d.log.Debug("native: device destroyed", "frames", d.frames)
}

// Live reports the number of live programs, textures and framebuffers.
func (d *Device) Live() (programs, textures, framebuffers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs), len(d.textures), len(d.framebuffers)
}
