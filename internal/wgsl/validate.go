package wgsl

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles a WGSL module with naga and returns the SPIR-V size on
// success. Errors carry naga's diagnostic.
func Validate(source string) (int, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return 0, fmt.Errorf("wgsl: %w", err)
	}
	return len(spirv), nil
}
