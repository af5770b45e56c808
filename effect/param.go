// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"strconv"
	"strings"
)

// ParamType is the declared type of an effect parameter.
type ParamType uint8

// Parameter types.
const (
	TypeFloat ParamType = iota + 1
	TypeInt
	TypeBool
	TypeColor
	TypeVec2
	TypeVec3
	TypeVec4
)

var paramTypeNames = map[ParamType]string{
	TypeFloat: "float",
	TypeInt:   "int",
	TypeBool:  "bool",
	TypeColor: "color",
	TypeVec2:  "vec2",
	TypeVec3:  "vec3",
	TypeVec4:  "vec4",
}

// String returns the lower-case type token used in @param lines.
func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return "ParamType(" + strconv.Itoa(int(t)) + ")"
}

// ParseParamType maps a type token to a ParamType. Matching is
// case-insensitive.
func ParseParamType(s string) (ParamType, bool) {
	s = strings.ToLower(s)
	for t, name := range paramTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Components returns the number of float components a value of this type
// occupies when uploaded: 1 for scalars, 2-4 for vectors, 4 for colours.
func (t ParamType) Components() int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4, TypeColor:
		return 4
	default:
		return 1
	}
}

// Numeric reports whether min, max and step apply to the type.
func (t ParamType) Numeric() bool {
	return t == TypeFloat || t == TypeInt
}

// Parameter describes one tunable uniform of an effect.
type Parameter struct {
	// ID is the uniform identifier in the shader source.
	ID string

	// Type is the declared type.
	Type ParamType

	// Default is the value used when a layer has no override.
	Default Value

	// Min, Max and Step are optional numeric bounds. Nil means unset.
	Min, Max, Step *float64

	// Name is the display name. Defaults to ID.
	Name string

	// Description is a free-form help text.
	Description string
}

// Accepts reports whether v has the value kind the parameter type expects.
func (p *Parameter) Accepts(v Value) bool {
	switch v.(type) {
	case FloatVal:
		return p.Type == TypeFloat
	case IntVal:
		return p.Type == TypeInt
	case BoolVal:
		return p.Type == TypeBool
	case RawVal:
		return p.Type == TypeColor || p.Type == TypeVec2 || p.Type == TypeVec3 || p.Type == TypeVec4
	}
	return false
}

// ParseValue converts a textual value to the kind the parameter type
// expects. It is used for @param defaults and for host configuration.
//
// Colours and vectors are kept as RawVal without decoding; a literal that
// does not decode is reported when the value is uploaded.
func (t ParamType) ParseValue(s string) (Value, error) {
	switch t {
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return FloatVal(f), nil
	case TypeInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return IntVal(i), nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		return BoolVal(b), nil
	case TypeColor, TypeVec2, TypeVec3, TypeVec4:
		return RawVal(s), nil
	}
	return nil, strconv.ErrSyntax
}
