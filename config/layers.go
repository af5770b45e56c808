package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/program"
)

// LayerError describes a layer entry that could not be fully typed.
type LayerError struct {
	Index  int
	Shader string
	Param  string // empty when the error concerns the layer itself
	Err    error
}

func (e *LayerError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("config: layer %d (%s): %v", e.Index, e.Shader, e.Err)
	}
	return fmt.Sprintf("config: layer %d (%s): param %s: %v", e.Index, e.Shader, e.Param, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// Errors reported through LayerError.
var (
	ErrUnknownShader = errors.New("unknown shader")
	ErrUnknownParam  = errors.New("unknown parameter")
	ErrBadValue      = errors.New("value does not match parameter type")
)

// Requests converts the configured stack into layer requests, typing
// parameter values against the descriptors in snap.
//
// Every entry yields a request. Entries naming a shader missing from snap
// keep no overrides; the renderer skips them. Overrides that cannot be
// typed are dropped. All such problems are joined into the returned error.
func (f *File) Requests(snap *catalog.Snapshot) ([]program.Layer, error) {
	out := make([]program.Layer, 0, len(f.Layers))
	var errs []error
	for i, lc := range f.Layers {
		l := program.Layer{
			ShaderID: lc.Shader,
			Order:    lc.Order,
			Enabled:  lc.Enabled == nil || *lc.Enabled,
			Opacity:  1,
			Depth:    lc.Depth,
		}
		if lc.Opacity != nil {
			l.Opacity = *lc.Opacity
		}
		d, ok := snap.Get(lc.Shader)
		if !ok {
			errs = append(errs, &LayerError{Index: i, Shader: lc.Shader, Err: ErrUnknownShader})
			out = append(out, l)
			continue
		}
		// Sorted for stable error order.
		ids := make([]string, 0, len(lc.Params))
		for id := range lc.Params {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p, ok := d.Parameter(id)
			if !ok {
				errs = append(errs, &LayerError{Index: i, Shader: lc.Shader, Param: id, Err: ErrUnknownParam})
				continue
			}
			v, err := Value(p.Type, lc.Params[id])
			if err != nil {
				errs = append(errs, &LayerError{Index: i, Shader: lc.Shader, Param: id, Err: err})
				continue
			}
			if l.Overrides == nil {
				l.Overrides = make(map[string]effect.Value, len(ids))
			}
			l.Overrides[id] = v
		}
		out = append(out, l)
	}
	return out, errors.Join(errs...)
}

// Value converts a decoded YAML or TOML value to the kind t expects.
// Strings are parsed as in @param defaults; number lists are accepted for
// colours and vectors. Unlike @param defaults, colour and vector strings
// must decode.
func Value(t effect.ParamType, raw any) (effect.Value, error) {
	switch x := raw.(type) {
	case string:
		v, err := t.ParseValue(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		if err := decodes(t, x); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return v, nil
	case bool:
		if t == effect.TypeBool {
			return effect.BoolVal(x), nil
		}
	case int:
		return number(t, float64(x), true)
	case int64:
		return number(t, float64(x), true)
	case uint64:
		return number(t, float64(x), true)
	case float64:
		return number(t, x, false)
	case []any:
		if t.Components() > 1 {
			parts := make([]string, len(x))
			for i, e := range x {
				f, ok := toFloat(e)
				if !ok {
					return nil, fmt.Errorf("%w: element %d is %T", ErrBadValue, i, e)
				}
				parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
			return Value(t, strings.Join(parts, ","))
		}
	}
	return nil, fmt.Errorf("%w: %s from %T", ErrBadValue, t, raw)
}

func decodes(t effect.ParamType, s string) error {
	var err error
	switch {
	case t == effect.TypeColor:
		_, err = effect.DecodeColor(s)
	case t.Components() > 1:
		_, err = effect.DecodeVector(s, t.Components())
	}
	return err
}

func number(t effect.ParamType, f float64, integral bool) (effect.Value, error) {
	switch t {
	case effect.TypeFloat:
		return effect.FloatVal(f), nil
	case effect.TypeInt:
		if integral || f == math.Trunc(f) {
			return effect.IntVal(int64(f)), nil
		}
		return nil, fmt.Errorf("%w: %v is not an integer", ErrBadValue, f)
	}
	return nil, fmt.Errorf("%w: %s from number", ErrBadValue, t)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
