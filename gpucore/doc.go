// Package gpucore defines the GPU collaborator used by the shaderwall
// rendering pipeline.
//
// The [Device] interface abstracts over backend implementations so the same
// orchestration code runs on:
//   - gogpu/wgpu HAL (backend/native), including the hal/noop device
//   - a CPU reference implementation (backend/software)
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([ProgramID], [TextureID],
// [FramebufferID]). The zero value [InvalidID] means "no resource"; devices
// never hand it out. Devices are responsible for tracking the mapping
// between IDs and backend objects. Destroying an unknown or already
// destroyed ID is a no-op.
//
// # Binding Model
//
// Drawing follows a bind-then-draw model: bind a framebuffer (0 is the
// visible surface), set the viewport, select a program, set its uniforms
// by name through the typed setters, bind textures to units and call
// [Device.DrawQuad]. [Device.Flush] ends the frame and submits recorded
// work.
//
//	dev.BindFramebuffer(fb)
//	dev.Viewport(w, h)
//	dev.Clear(gpucore.Color{})
//	dev.UseProgram(prog)
//	dev.SetFloat("u_time", t)
//	dev.SetVec2("u_resolution", [2]float32{w, h})
//	if err := dev.DrawQuad(); err != nil { ... }
//	dev.BindFramebuffer(gpucore.InvalidID)
//	...
//	err := dev.Flush()
//
// # Coordinate Conventions
//
// Fragment coordinates and render-target texels use a bottom-left origin.
// Images uploaded with [Device.WriteTexture] store their first row at v=0,
// so an image sampled without correction appears upside down; the composite
// program corrects this with its u_flip_y uniform.
package gpucore
