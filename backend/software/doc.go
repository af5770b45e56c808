// Package software implements gpucore.Device on the CPU.
//
// The device follows the same conventions as the GPU backends: render
// targets and the surface have a bottom-left origin, uploaded images keep
// their first row at v = 0, textures sample bilinearly with clamp-to-edge
// by default. Texels are stored as float32 so compositing is exact up to
// the final 8-bit readback.
//
// WGSL cannot run on the CPU, so effect programs are backed by Go
// [Kernel] functions keyed by effect id. Register them globally with
// [RegisterKernel] or per device with [WithKernel]. The composite program
// is built in.
//
// The device is intended for headless rendering and as a reference for
// tests. It is not safe for concurrent use.
package software
