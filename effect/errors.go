package effect

import (
	"errors"
	"fmt"
	"strings"
)

// Parse error kinds. A [*ParseError] unwraps to exactly one of these, so
// callers can test the kind with errors.Is.
var (
	// ErrNoMetadataBlock means the source has no block comment with tags.
	ErrNoMetadataBlock = errors.New("effect: no metadata block")

	// ErrMissingRequiredTag means @shader, @id or @version is absent or empty.
	ErrMissingRequiredTag = errors.New("effect: missing required tag")

	// ErrInvalidParameterType means a @param line names an unknown type.
	ErrInvalidParameterType = errors.New("effect: invalid parameter type")

	// ErrInvalidDefaultValue means a @param default does not parse for its type.
	ErrInvalidDefaultValue = errors.New("effect: invalid default value")

	// ErrMalformedParameter means a @param line does not follow the grammar.
	ErrMalformedParameter = errors.New("effect: malformed parameter")
)

// ParseError reports why a source unit could not be parsed.
type ParseError struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Ref identifies the source unit.
	Ref string

	// Tag is the missing tag name, without '@', for ErrMissingRequiredTag.
	Tag string

	// Line is the 1-based source line of the offending @param, or 0.
	Line int

	// Text is the offending line, trimmed.
	Text string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Tag != "" {
		b.WriteString(" @" + e.Tag)
	}
	if e.Ref != "" {
		b.WriteString(" in " + e.Ref)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d: %q)", e.Line, e.Text)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind sentinel and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError reports a descriptor that parsed but is not internally
// consistent.
type ValidationError struct {
	// ID is the effect id, possibly empty.
	ID string

	// Problems lists every violation found.
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("effect: invalid descriptor %q: %s", e.ID, strings.Join(e.Problems, "; "))
}
