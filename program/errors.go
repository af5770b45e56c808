package program

import "fmt"

// MissingShaderError reports a layer that references an effect id the
// catalog does not contain.
type MissingShaderError struct {
	ShaderID string
}

func (e *MissingShaderError) Error() string {
	return "program: missing shader: " + e.ShaderID
}

// CompileError reports a program that failed to compile or link.
type CompileError struct {
	ShaderID string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("program: compile %s: %v", e.ShaderID, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
