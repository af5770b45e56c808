// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaderwall renders animated effects over a background image by
// compositing independently authored fragment shaders.
//
// # Overview
//
// Each effect is a self-describing shader source unit: a WGSL fragment
// shader whose first block comment carries metadata tags. The pipeline is:
//
//  1. [effect.Parse] reads the metadata block into a descriptor.
//  2. A [catalog.Catalog] discovers effect sources and publishes immutable
//     snapshots keyed by effect id.
//  3. A [program.Cache] compiles each referenced effect once and derives the
//     ordered list of active layers.
//  4. A [target.Manager] owns one offscreen render target per active layer.
//  5. A [renderer.Renderer] draws every layer into its own target and
//     composites them over the background in order.
//
// GPU work goes through the handle-based [gpucore.Device] interface. Two
// implementations are provided: backend/native on gogpu/wgpu HAL and
// backend/software, a CPU reference device used for headless rendering and
// tests.
//
// # Effect sources
//
//	/*
//	 * @shader Snowfall
//	 * @id snow
//	 * @version 1.0.0
//	 * @tags weather, winter
//	 * @param u_speed float 1.0 min=0.1 max=5.0 step=0.1 name="Speed"
//	 * @param u_tint color #FFFFFF name="Tint"
//	 */
//	fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32> { ... }
//
// # Logging
//
// The library is silent by default. Use [SetLogger] to route diagnostics
// to any [log/slog] handler.
//
// [effect.Parse]: https://pkg.go.dev/github.com/gogpu/shaderwall/effect#Parse
// [catalog.Catalog]: https://pkg.go.dev/github.com/gogpu/shaderwall/catalog#Catalog
// [program.Cache]: https://pkg.go.dev/github.com/gogpu/shaderwall/program#Cache
// [target.Manager]: https://pkg.go.dev/github.com/gogpu/shaderwall/target#Manager
// [renderer.Renderer]: https://pkg.go.dev/github.com/gogpu/shaderwall/renderer#Renderer
// [gpucore.Device]: https://pkg.go.dev/github.com/gogpu/shaderwall/gpucore#Device
package shaderwall

// Version is the library version.
const Version = "0.1.0"
