// Package native implements gpucore.Device on gogpu/wgpu/hal.
//
// The device follows the immediate-mode binding model of gpucore: state
// calls and draws are recorded and encoded on Flush, one render pass per
// run of draws into the same target. Every draw gets its own uniform
// buffer and bind group, released once the queue reports the frame's
// submission complete.
//
// A device either shares the host's GPU through a gpucontext provider
// (New) or runs on the hal/noop adapter (NewNoop), which validates and
// records work without producing pixels and is what the tests use.
//
// Textures keep the gpucore convention that image row 0 is texel row 0
// counted from the bottom: WriteTexture flips rows on upload and the
// composite shader samples accordingly.
//
// Build with -tags nogpu to compile the package empty; nothing is
// registered then and the native and noop backends are unavailable.
package native
