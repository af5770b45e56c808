// Package renderer implements the frame orchestrator.
//
// A [Renderer] follows the lifecycle of the host's graphics context:
//
//	Uninitialized --Setup--> Ready --RenderFrame--> Rendering --> Ready
//	Ready --Resize--> Ready
//	any --Release--> Released (terminal)
//
// Every frame runs two passes. The layer pass draws each active layer
// into its own offscreen target with the standard uniforms (u_time,
// u_resolution, u_parallax, u_depth) and the layer's parameters. The
// composite pass draws the background onto the visible surface and blends
// every rendered layer over it in ascending order with
// result = mix(result, layer, layer.a * opacity).
//
// Failures never abort a frame: a layer whose program cannot be built or
// whose target cannot be allocated is logged and skipped.
//
// All lifecycle methods must be called from the render goroutine.
// [Renderer.UpdateLayers], [Renderer.SetCatalog] and
// [Renderer.SetBackground] may be called from any goroutine; their
// effect is applied at the start of the next frame.
package renderer
