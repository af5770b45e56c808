package effect

import "strconv"

// Value is a parameter value. It is a closed union implemented by
// FloatVal, IntVal, BoolVal and RawVal; use a type switch to inspect it.
//
// COLOR and VEC defaults are kept as RawVal and decoded at upload time
// with [Parameter.Floats].
type Value interface {
	isValue()
	String() string
}

// FloatVal is a FLOAT parameter value.
type FloatVal float64

// IntVal is an INT parameter value.
type IntVal int64

// BoolVal is a BOOL parameter value.
type BoolVal bool

// RawVal is an undecoded COLOR or VEC parameter value.
type RawVal string

func (FloatVal) isValue() {}
func (IntVal) isValue()   {}
func (BoolVal) isValue()  {}
func (RawVal) isValue()   {}

func (v FloatVal) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v BoolVal) String() string  { return strconv.FormatBool(bool(v)) }
func (v RawVal) String() string   { return string(v) }
