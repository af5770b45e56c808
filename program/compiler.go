package program

import (
	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/internal/wgsl"
)

// Compiler compiles and links the program for an effect id.
type Compiler interface {
	CompileAndLink(shaderID string) (gpucore.ProgramID, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(shaderID string) (gpucore.ProgramID, error)

// CompileAndLink calls f.
func (f CompilerFunc) CompileAndLink(shaderID string) (gpucore.ProgramID, error) {
	return f(shaderID)
}

// Lookup resolves effect ids to catalog snapshots. *catalog.Catalog
// satisfies it, so compiles always see the latest published snapshot.
type Lookup interface {
	Snapshot() *catalog.Snapshot
}

// StaticLookup serves a fixed snapshot.
type StaticLookup struct {
	Snap *catalog.Snapshot
}

// Snapshot returns the fixed snapshot.
func (s StaticLookup) Snapshot() *catalog.Snapshot { return s.Snap }

// DeviceCompiler builds effect programs on a device from catalog sources.
type DeviceCompiler struct {
	Device  gpucore.Device
	Catalog Lookup
}

var _ Compiler = (*DeviceCompiler)(nil)

// CompileAndLink resolves the effect, generates its WGSL module and
// creates the program on the device.
func (c *DeviceCompiler) CompileAndLink(shaderID string) (gpucore.ProgramID, error) {
	var snap *catalog.Snapshot
	if c.Catalog != nil {
		snap = c.Catalog.Snapshot()
	}
	d, ok := snap.Get(shaderID)
	if !ok {
		return gpucore.InvalidID, &MissingShaderError{ShaderID: shaderID}
	}
	src, _ := snap.Source(shaderID)
	desc, err := wgsl.EffectProgram(d, src)
	if err != nil {
		return gpucore.InvalidID, &CompileError{ShaderID: shaderID, Err: err}
	}
	id, err := c.Device.CreateProgram(desc)
	if err != nil {
		return gpucore.InvalidID, &CompileError{ShaderID: shaderID, Err: err}
	}
	return id, nil
}

// CompileComposite creates the built-in composite program.
func (c *DeviceCompiler) CompileComposite() (gpucore.ProgramID, error) {
	id, err := c.Device.CreateProgram(wgsl.CompositeProgram())
	if err != nil {
		return gpucore.InvalidID, &CompileError{ShaderID: "composite", Err: err}
	}
	return id, nil
}
