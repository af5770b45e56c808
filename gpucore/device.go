// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

import "image"

// Device abstracts the GPU used by the renderer.
//
// Implementations are used from a single render goroutine and need not be
// safe for concurrent use.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// === Programs ===

	// CreateProgram compiles and links a program. A compile or link failure
	// is returned as an error and leaves no resource behind.
	CreateProgram(desc ProgramDesc) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// === Textures ===

	// CreateTexture allocates a texture. Contents are undefined until
	// written or rendered to.
	CreateTexture(desc TextureDesc) (TextureID, error)

	// WriteTexture uploads img into the texture. The image must have the
	// texture's dimensions. Row 0 of img becomes texel row 0 (v = 0).
	WriteTexture(id TextureID, img image.Image) error

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// === Framebuffers ===

	// CreateFramebuffer creates a render target with color as its only
	// color attachment.
	CreateFramebuffer(color TextureID) (FramebufferID, error)

	// FramebufferStatus returns nil when the framebuffer is complete and
	// can be rendered to.
	FramebufferStatus(id FramebufferID) error

	// DestroyFramebuffer releases a framebuffer. The attached texture is
	// not destroyed.
	DestroyFramebuffer(id FramebufferID)

	// === Drawing ===

	// BindFramebuffer selects the draw target. InvalidID selects the
	// visible surface.
	BindFramebuffer(id FramebufferID)

	// Viewport sets the draw area of the bound target in pixels. For the
	// visible surface it also sets the surface size.
	Viewport(width, height int)

	// Clear fills the bound target with c.
	Clear(c Color)

	// UseProgram selects the program for subsequent uniform updates and draws.
	UseProgram(id ProgramID)

	// Typed uniform setters. Names the current program does not declare
	// are ignored.
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVec2(name string, v [2]float32)
	SetVec3(name string, v [3]float32)
	SetVec4(name string, v [4]float32)

	// BindTexture binds a texture to a sampling unit for composite programs.
	BindTexture(unit int, id TextureID)

	// DrawQuad draws a full-viewport quad with the current program.
	DrawQuad() error

	// Flush submits all recorded work for the frame.
	Flush() error

	// Destroy releases every resource still owned by the device.
	Destroy()
}
