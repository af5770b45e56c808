// Package backend provides a registry of GPU device implementations.
//
// Device packages register a factory from their init function and hosts
// select one at runtime by name or by priority:
//
//	import (
//	    "github.com/gogpu/shaderwall/backend"
//	    _ "github.com/gogpu/shaderwall/backend/native"
//	    _ "github.com/gogpu/shaderwall/backend/software"
//	)
//
//	// Best available: native when the host provides a GPU, else software.
//	dev, name, err := backend.Default(backend.Config{Provider: provider})
//
//	// Or request a specific backend.
//	dev, err := backend.Open(backend.BackendSoftware, backend.Config{})
package backend
