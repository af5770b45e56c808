package effect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DecodeColor decodes a colour literal into straight RGBA components in
// [0, 1]. Accepted forms are #RGB, #RRGGBB, #RRGGBBAA and a list of three
// or four comma-separated floats. Alpha defaults to 1.
func DecodeColor(raw string) ([4]float32, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "#") {
		v, err := decodeFloats(s)
		if err != nil {
			return [4]float32{}, fmt.Errorf("color %q: %w", raw, err)
		}
		switch len(v) {
		case 3:
			return [4]float32{v[0], v[1], v[2], 1}, nil
		case 4:
			return [4]float32{v[0], v[1], v[2], v[3]}, nil
		}
		return [4]float32{}, fmt.Errorf("color %q: want 3 or 4 components, got %d", raw, len(v))
	}

	alpha := float32(1)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("color %q: bad alpha: %w", raw, err)
		}
		alpha = float32(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return [4]float32{}, fmt.Errorf("color %q: %w", raw, err)
	}
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), alpha}, nil
}

// DecodeVector decodes n floats separated by commas or whitespace.
func DecodeVector(raw string, n int) ([4]float32, error) {
	var out [4]float32
	v, err := decodeFloats(raw)
	if err != nil {
		return out, fmt.Errorf("vec%d %q: %w", n, raw, err)
	}
	if len(v) != n {
		return out, fmt.Errorf("vec%d %q: got %d components", n, raw, len(v))
	}
	copy(out[:], v)
	return out, nil
}

func decodeFloats(s string) ([]float32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 || len(fields) > 4 {
		return nil, fmt.Errorf("want 1 to 4 numbers")
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(x)
	}
	return out, nil
}

// Floats converts v into upload components for the parameter's type.
// Scalars occupy element 0; BOOL maps to 0 or 1. A value whose kind does
// not match the parameter type is an error.
func (p *Parameter) Floats(v Value) ([4]float32, error) {
	if !p.Accepts(v) {
		return [4]float32{}, fmt.Errorf("parameter %s: %T does not match type %s", p.ID, v, p.Type)
	}
	switch x := v.(type) {
	case FloatVal:
		return [4]float32{float32(x)}, nil
	case IntVal:
		return [4]float32{float32(x)}, nil
	case BoolVal:
		if x {
			return [4]float32{1}, nil
		}
		return [4]float32{}, nil
	case RawVal:
		if p.Type == TypeColor {
			return DecodeColor(string(x))
		}
		return DecodeVector(string(x), p.Type.Components())
	}
	return [4]float32{}, fmt.Errorf("parameter %s: unsupported value %T", p.ID, v)
}
