// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package program

import (
	"log/slog"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/gpucore"
)

// Destroyer releases compiled programs. gpucore.Device satisfies it.
type Destroyer interface {
	DestroyProgram(id gpucore.ProgramID)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// Cache maps effect ids to compiled programs and tracks the layer list.
// It is owned by the render goroutine and is not safe for concurrent use.
type Cache struct {
	compiler  Compiler
	destroyer Destroyer
	log       *slog.Logger

	programs map[string]gpucore.ProgramID
	layers   []Layer
	compiles int
}

// NewCache creates an empty cache. destroyer may be nil when programs need
// no explicit release.
func NewCache(compiler Compiler, destroyer Destroyer, opts ...Option) *Cache {
	c := &Cache{
		compiler:  compiler,
		destroyer: destroyer,
		log:       shaderwall.Logger(),
		programs:  make(map[string]gpucore.ProgramID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the program for shaderID, compiling it on first use.
// On failure it logs the error and returns gpucore.InvalidID without
// caching the failure, so a later call retries.
func (c *Cache) GetOrCreate(shaderID string) gpucore.ProgramID {
	if id, ok := c.programs[shaderID]; ok {
		return id
	}
	c.compiles++
	id, err := c.compiler.CompileAndLink(shaderID)
	if err != nil || id == gpucore.InvalidID {
		c.log.Warn("program: compile failed", "shader", shaderID, "err", err)
		return gpucore.InvalidID
	}
	c.programs[shaderID] = id
	c.log.Debug("program: compiled", "shader", shaderID, "program", uint64(id))
	return id
}

// Lookup returns the cached program for shaderID without compiling.
func (c *Cache) Lookup(shaderID string) (gpucore.ProgramID, bool) {
	id, ok := c.programs[shaderID]
	return id, ok
}

// Update replaces the tracked layer list. Cached programs are kept, so
// re-enabling a layer does not recompile.
func (c *Cache) Update(layers []Layer) {
	c.layers = append(c.layers[:0:0], layers...)
}

// Layers returns a copy of the tracked layer list.
func (c *Cache) Layers() []Layer {
	return append([]Layer(nil), c.layers...)
}

// Active returns the enabled tracked layers in ascending order.
func (c *Cache) Active() []Layer {
	return Active(c.layers)
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return len(c.programs) }

// Compiles returns the number of compile attempts so far.
func (c *Cache) Compiles() int { return c.compiles }

// Release destroys every cached program and empties the cache. The layer
// list is kept; later calls to GetOrCreate recompile.
func (c *Cache) Release() {
	for shaderID, id := range c.programs {
		if c.destroyer != nil {
			c.destroyer.DestroyProgram(id)
		}
		delete(c.programs, shaderID)
	}
}
