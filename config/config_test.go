package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/effects"
	"github.com/gogpu/shaderwall/program"
)

const yamlConfig = `
effects: fx
background: bg.png
width: 640
height: 360
layers:
  - shader: snow
    order: 2
    opacity: 0.5
    params:
      u_speed: 1
      u_layers: 2
      u_drift: false
      u_color: "#FF0000"
  - shader: gradient
    order: 1
    enabled: false
    params:
      u_top: [0, 0, 1]
`

const tomlConfig = `
effects = "fx"
background = "bg.png"
width = 640
height = 360

[[layers]]
shader = "snow"
order = 2
opacity = 0.5

[layers.params]
u_speed = 1
u_layers = 2
u_drift = false
u_color = "#FF0000"

[[layers]]
shader = "gradient"
order = 1
enabled = false

[layers.params]
u_top = [0, 0, 1]
`

func snapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap := catalog.New().Discover(effects.Sources())
	if snap.Len() == 0 {
		t.Fatal("no bundled effects")
	}
	return snap
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yaml", FormatYAML},
		{"a.YML", FormatYAML},
		{"dir/a.toml", FormatTOML},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatOf("a.json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("FormatOf(a.json) err = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFormatsAgree(t *testing.T) {
	y, err := Parse([]byte(yamlConfig), FormatYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	tm, err := Parse([]byte(tomlConfig), FormatTOML)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	snap := snapshot(t)
	ly, err := y.Requests(snap)
	if err != nil {
		t.Fatalf("yaml layers: %v", err)
	}
	lt, err := tm.Requests(snap)
	if err != nil {
		t.Fatalf("toml layers: %v", err)
	}
	if diff := cmp.Diff(ly, lt); diff != "" {
		t.Errorf("yaml and toml layers differ (-yaml +toml):\n%s", diff)
	}
	if y.Width != 640 || tm.Height != 360 || tm.Background != "bg.png" {
		t.Errorf("scalars: yaml %+v toml %+v", y, tm)
	}
}

func TestRequestsTyped(t *testing.T) {
	f, err := Parse([]byte(yamlConfig), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Requests(snapshot(t))
	if err != nil {
		t.Fatal(err)
	}
	want := []program.Layer{
		{
			ShaderID: "snow",
			Order:    2,
			Enabled:  true,
			Opacity:  0.5,
			Overrides: map[string]effect.Value{
				"u_speed":  effect.FloatVal(1),
				"u_layers": effect.IntVal(2),
				"u_drift":  effect.BoolVal(false),
				"u_color":  effect.RawVal("#FF0000"),
			},
		},
		{
			ShaderID:  "gradient",
			Order:     1,
			Opacity:   1,
			Overrides: map[string]effect.Value{"u_top": effect.RawVal("0,0,1")},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Requests mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestsReportProblems(t *testing.T) {
	f := &File{Layers: []Layer{
		{Shader: "missing", Params: map[string]any{"u_x": 1}},
		{Shader: "snow", Params: map[string]any{
			"u_nope":   1.0,
			"u_layers": 1.5,
			"u_speed":  0.7,
		}},
	}}
	got, err := f.Requests(snapshot(t))
	if len(got) != 2 {
		t.Fatalf("got %d layers, want 2", len(got))
	}
	if got[0].ShaderID != "missing" || got[0].Overrides != nil {
		t.Errorf("missing shader layer = %+v", got[0])
	}
	if diff := cmp.Diff(map[string]effect.Value{"u_speed": effect.FloatVal(0.7)}, got[1].Overrides); diff != "" {
		t.Errorf("overrides (-want +got):\n%s", diff)
	}
	for _, want := range []error{ErrUnknownShader, ErrUnknownParam, ErrBadValue} {
		if !errors.Is(err, want) {
			t.Errorf("err %v does not wrap %v", err, want)
		}
	}
	var le *LayerError
	if !errors.As(err, &le) || le.Index != 0 || le.Shader != "missing" {
		t.Errorf("first LayerError = %+v", le)
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		typ  effect.ParamType
		raw  any
		want effect.Value
	}{
		{"float from int", effect.TypeFloat, 2, effect.FloatVal(2)},
		{"float from string", effect.TypeFloat, "0.25", effect.FloatVal(0.25)},
		{"int from int64", effect.TypeInt, int64(3), effect.IntVal(3)},
		{"int from whole float", effect.TypeInt, 4.0, effect.IntVal(4)},
		{"bool", effect.TypeBool, true, effect.BoolVal(true)},
		{"bool from string", effect.TypeBool, "false", effect.BoolVal(false)},
		{"color hex", effect.TypeColor, "#00FF00", effect.RawVal("#00FF00")},
		{"color list", effect.TypeColor, []any{1, 0.5, 0}, effect.RawVal("1,0.5,0")},
		{"vec2 list", effect.TypeVec2, []any{int64(1), 2.5}, effect.RawVal("1,2.5")},
		{"vec3 string", effect.TypeVec3, "1 2 3", effect.RawVal("1 2 3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.typ, tt.raw)
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			if got != tt.want {
				t.Errorf("Value = %#v, want %#v", got, tt.want)
			}
		})
	}

	bad := []struct {
		name string
		typ  effect.ParamType
		raw  any
	}{
		{"int from fraction", effect.TypeInt, 1.5},
		{"bool from number", effect.TypeBool, 1},
		{"float from bool", effect.TypeFloat, true},
		{"vec2 wrong arity", effect.TypeVec2, []any{1, 2, 3}},
		{"vec2 non-number", effect.TypeVec2, []any{1, "x"}},
		{"color garbage", effect.TypeColor, "#GG0000"},
		{"float list", effect.TypeFloat, []any{1}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Value(tt.typ, tt.raw); !errors.Is(err, ErrBadValue) {
				t.Errorf("Value err = %v, want ErrBadValue", err)
			}
		})
	}
}

func TestParseDefaultsAndValidation(t *testing.T) {
	f, err := Parse(nil, FormatYAML)
	if err != nil {
		t.Fatalf("empty yaml: %v", err)
	}
	if f.Width != DefaultWidth || f.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want defaults", f.Width, f.Height)
	}

	bad := []struct {
		name   string
		data   string
		format Format
	}{
		{"unknown yaml key", "colour: red\n", FormatYAML},
		{"unknown toml key", "colour = \"red\"\n", FormatTOML},
		{"negative size", "width: -1\n", FormatYAML},
		{"missing shader", "layers:\n  - order: 1\n", FormatYAML},
		{"opacity range", "[[layers]]\nshader = \"snow\"\nopacity = 2.0\n", FormatTOML},
		{"bad format", "", Format(9)},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data), tt.format); err == nil {
				t.Error("Parse succeeded, want error")
			}
		})
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.yaml")
	if err := os.WriteFile(path, []byte(yamlConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "fx"); f.Effects != want {
		t.Errorf("Effects = %q, want %q", f.Effects, want)
	}
	if want := filepath.Join(dir, "bg.png"); f.Background != want {
		t.Errorf("Background = %q, want %q", f.Background, want)
	}
	if _, err := Load(filepath.Join(dir, "absent.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestEncodeReparses(t *testing.T) {
	on := true
	op := 0.75
	f := &File{Width: 320, Height: 200, Clear: "#102030", Layers: []Layer{
		{Shader: "plasma", Order: 1, Enabled: &on, Opacity: &op, Params: map[string]any{"u_scale": 2.5}},
	}}
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Encode(&buf, format); err != nil {
				t.Fatal(err)
			}
			back, err := Parse(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("reparse: %v\n%s", err, buf.String())
			}
			if diff := cmp.Diff(f, back); diff != "" {
				t.Errorf("reparsed file differs (-want +got):\n%s", diff)
			}
		})
	}
}
