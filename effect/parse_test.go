package effect

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const snowSource = `/*
 * @shader Snowfall
 * @id snow
 * @version 1.0.0
 * @author gogpu
 * @license MIT
 * @tags weather, winter, ,winter
 * @param u_speed float 1.0 min=0.1 max=5.0 step=0.1 name="Fall speed" desc="How fast flakes fall"
 * @param u_count int 200 min=10 max=1000
 * @param u_wind bool false
 * @param u_tint color #FFFFFF name="Tint"
 * @param u_drift vec2 0.1,0.0
 */

fn effect(frag: vec2<f32>, uv: vec2<f32>) -> vec4<f32> {
	return vec4<f32>(1.0, 1.0, 1.0, 0.0);
}
`

func ptr(f float64) *float64 { return &f }

func TestParse(t *testing.T) {
	got, err := Parse(snowSource, "effects/snow.wgsl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := &Descriptor{
		Name:               "Snowfall",
		ID:                 "snow",
		Version:            "1.0.0",
		Author:             "gogpu",
		License:            "MIT",
		Tags:               []string{"weather", "winter"},
		MinPlatformVersion: "2.0",
		SourceRef:          "effects/snow.wgsl",
		Parameters: []Parameter{
			{ID: "u_speed", Type: TypeFloat, Default: FloatVal(1), Min: ptr(0.1), Max: ptr(5), Step: ptr(0.1), Name: "Fall speed", Description: "How fast flakes fall"},
			{ID: "u_count", Type: TypeInt, Default: IntVal(200), Min: ptr(10), Max: ptr(1000), Name: "u_count"},
			{ID: "u_wind", Type: TypeBool, Default: BoolVal(false), Name: "u_wind"},
			{ID: "u_tint", Type: TypeColor, Default: RawVal("#FFFFFF"), Name: "Tint"},
			{ID: "u_drift", Type: TypeVec2, Default: RawVal("0.1,0.0"), Name: "u_drift"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseDeterministic(t *testing.T) {
	a, err := Parse(snowSource, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(snowSource, "a")
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(a, b) {
		t.Error("Parse() is not deterministic")
	}
}

func TestParseMetadataBlockSelection(t *testing.T) {
	src := `// line comment @id nope
/* licence header without tags */
/* @shader Second
   @id second
   @version 2 */
/* @shader Third
   @id third
   @version 3 */`
	d, err := Parse(src, "x")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.ID != "second" {
		t.Errorf("ID = %q, want %q (first tagged block)", d.ID, "second")
	}
}

func TestParseFirstOccurrenceWins(t *testing.T) {
	d, err := Parse("/* @shader A\n@id a\n@id b\n@version 1\n@minOpenGL 3.0 */", "x")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "a" {
		t.Errorf("ID = %q, want %q", d.ID, "a")
	}
	if d.MinPlatformVersion != "3.0" {
		t.Errorf("MinPlatformVersion = %q, want %q", d.MinPlatformVersion, "3.0")
	}
}

func TestParseNormalizesTagValues(t *testing.T) {
	d, err := Parse("/* @shader Cafe\u0301\n@id cafe\n@version 1 */", "x")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Caf\u00e9" {
		t.Errorf("Name = %q, want NFC form %q", d.Name, "Caf\u00e9")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
		tag  string
		line int
	}{
		{"empty", "", ErrNoMetadataBlock, "", 0},
		{"no block", "fn main() {}", ErrNoMetadataBlock, "", 0},
		{"untagged block", "/* just a comment */", ErrNoMetadataBlock, "", 0},
		{"unterminated", "/* @id x @shader y", ErrNoMetadataBlock, "", 0},
		{"missing id", "/* @shader S\n@version 1 */", ErrMissingRequiredTag, "id", 0},
		{"missing id and shader", "/* @version 1 */", ErrMissingRequiredTag, "id", 0},
		{"missing everything but author", "/* @author me */", ErrMissingRequiredTag, "id", 0},
		{"empty id", "/* @shader S\n@id\n@version 1 */", ErrMissingRequiredTag, "id", 0},
		{"missing shader", "/* @id x\n@version 1 */", ErrMissingRequiredTag, "shader", 0},
		{"missing version", "/* @id x\n@shader S */", ErrMissingRequiredTag, "version", 0},
		{
			"bad type",
			"/*\n@shader S\n@id x\n@version 1\n@param u_a matrix 1 */",
			ErrInvalidParameterType, "", 5,
		},
		{
			"bad float default",
			"/*\n@shader S\n@id x\n@param u_a float fast\n@version 1 */",
			ErrInvalidDefaultValue, "", 4,
		},
		{
			"bad bool default",
			"/* @shader S\n@id x\n@version 1\n@param u_a bool maybe */",
			ErrInvalidDefaultValue, "", 4,
		},
		{
			"too few fields",
			"/* @shader S\n@id x\n@version 1\n@param u_a float */",
			ErrMalformedParameter, "", 4,
		},
		{
			"unterminated quote",
			"/* @shader S\n@id x\n@version 1\n@param u_a float 1 name=\"oops */",
			ErrMalformedParameter, "", 4,
		},
		{
			"bad min",
			"/* @shader S\n@id x\n@version 1\n@param u_a float 1 min=low */",
			ErrMalformedParameter, "", 4,
		},
		{
			"bare option",
			"/* @shader S\n@id x\n@version 1\n@param u_a float 1 clamp */",
			ErrMalformedParameter, "", 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.src, "test.wgsl")
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", d)
			}
			if d != nil {
				t.Errorf("Parse() returned a partial descriptor with error %v", err)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Parse() error = %v, want kind %v", err, tt.kind)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *ParseError", err)
			}
			if pe.Tag != tt.tag {
				t.Errorf("Tag = %q, want %q", pe.Tag, tt.tag)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
			if pe.Ref != "test.wgsl" {
				t.Errorf("Ref = %q, want %q", pe.Ref, "test.wgsl")
			}
		})
	}
}

func TestParseIgnoresBoundsOnNonNumeric(t *testing.T) {
	d, err := Parse("/* @shader S\n@id x\n@version 1\n@param u_c color #000 min=0 max=1 */", "x")
	if err != nil {
		t.Fatal(err)
	}
	p := d.Parameters[0]
	if p.Min != nil || p.Max != nil {
		t.Errorf("color parameter kept bounds min=%v max=%v", p.Min, p.Max)
	}
}

func TestParseKeepsRawColorAndVectorDefaults(t *testing.T) {
	src := `/*
@shader S
@id x
@version 1
@param u_named color red
@param u_short color #F00F
@param u_call vec3 vec3(1,0,0)
*/`
	d, err := Parse(src, "x")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []Value{RawVal("red"), RawVal("#F00F"), RawVal("vec3(1,0,0)")}
	for i, w := range want {
		p := &d.Parameters[i]
		if p.Default != w {
			t.Errorf("%s default = %#v, want %#v", p.ID, p.Default, w)
		}
		if _, err := p.Floats(p.Default); err == nil {
			t.Errorf("%s default %v decoded, want an upload error", p.ID, p.Default)
		}
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestTokenize(t *testing.T) {
	got, err := tokenize(`u_a  float 1 name="Flake size" desc="two  spaces"`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"u_a", "float", "1", "name=Flake size", "desc=two  spaces"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
	}
}
