package program

import (
	"cmp"
	"slices"

	"github.com/gogpu/shaderwall/effect"
)

// Layer is one effect placement requested by the host.
type Layer struct {
	// ShaderID references an effect in the catalog.
	ShaderID string

	// Order sorts layers; lower values are drawn first (further back).
	Order int

	// Enabled layers are rendered; disabled ones are ignored.
	Enabled bool

	// Opacity in [0, 1] scales the layer's alpha during compositing.
	Opacity float64

	// Depth is the reserved depth uniform, zero by default.
	Depth float64

	// Overrides maps parameter ids to values of the declared type.
	Overrides map[string]effect.Value
}

// ClampedOpacity returns Opacity limited to [0, 1].
func (l *Layer) ClampedOpacity() float32 {
	return float32(min(max(l.Opacity, 0), 1))
}

// Active returns the enabled layers in ascending Order. Layers with equal
// Order keep their relative input order. The input is not modified.
func Active(layers []Layer) []Layer {
	out := make([]Layer, 0, len(layers))
	for _, l := range layers {
		if l.Enabled {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b Layer) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}
