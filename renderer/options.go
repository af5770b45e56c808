package renderer

import (
	"log/slog"

	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/program"
)

// Option configures a Renderer.
type Option func(*options)

type options struct {
	log        *slog.Logger
	compiler   program.Compiler
	clearColor gpucore.Color
	layers     []program.Layer
}

func defaultOptions() options {
	return options{
		clearColor: gpucore.Color{A: 1},
	}
}

// WithLogger sets the logger used by the renderer and the caches it owns.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCompiler replaces the catalog-backed effect compiler.
func WithCompiler(c program.Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// WithClearColor sets the surface colour used when no background is set.
// The default is opaque black.
func WithClearColor(c gpucore.Color) Option {
	return func(o *options) { o.clearColor = c }
}

// WithLayers sets the initial layer requests.
func WithLayers(layers []program.Layer) Option {
	return func(o *options) { o.layers = layers }
}
