package effect

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// DefaultMinPlatformVersion is used when a source has no @minOpenGL tag.
const DefaultMinPlatformVersion = "2.0"

// Standard uniforms set by the renderer on every layer. Parameter ids must
// not collide with them.
const (
	UniformTime       = "u_time"
	UniformResolution = "u_resolution"
	UniformParallax   = "u_parallax"
	UniformDepth      = "u_depth"
)

// ReservedUniforms lists the standard uniform names.
var ReservedUniforms = []string{UniformTime, UniformResolution, UniformParallax, UniformDepth}

// Descriptor is the parsed metadata of one effect.
type Descriptor struct {
	// Name is the display name (@shader).
	Name string

	// ID is the unique effect id (@id).
	ID string

	// Version is the effect version (@version), usually semver.
	Version string

	Author      string
	Source      string
	License     string
	Description string

	// Tags are the trimmed, non-empty @tags entries in declaration order.
	Tags []string

	// MinPlatformVersion is the minimum graphics platform version (@minOpenGL).
	MinPlatformVersion string

	// Parameters are the @param declarations in declaration order.
	Parameters []Parameter

	// SourceRef identifies where the effect was loaded from.
	SourceRef string
}

// Parameter returns the parameter with the given uniform id.
func (d *Descriptor) Parameter(id string) (*Parameter, bool) {
	for i := range d.Parameters {
		if d.Parameters[i].ID == id {
			return &d.Parameters[i], true
		}
	}
	return nil, false
}

// HasTag reports whether the descriptor carries tag.
func (d *Descriptor) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the descriptor is internally consistent. It returns
// a *ValidationError listing every problem, or nil.
func (d *Descriptor) Validate() error {
	var problems []string
	if d.ID == "" {
		problems = append(problems, "empty id")
	}
	if d.Name == "" {
		problems = append(problems, "empty display name")
	}
	if d.Version == "" {
		problems = append(problems, "empty version")
	}

	seen := make(map[string]bool, len(d.Parameters))
	for i := range d.Parameters {
		p := &d.Parameters[i]
		switch {
		case !identRe.MatchString(p.ID):
			problems = append(problems, fmt.Sprintf("parameter %q is not a valid identifier", p.ID))
		case slices.Contains(ReservedUniforms, p.ID):
			problems = append(problems, fmt.Sprintf("parameter %q shadows a standard uniform", p.ID))
		case seen[p.ID]:
			problems = append(problems, fmt.Sprintf("duplicate parameter %q", p.ID))
		}
		seen[p.ID] = true

		if p.Default == nil || !p.Accepts(p.Default) {
			problems = append(problems, fmt.Sprintf("parameter %q: default does not match type %s", p.ID, p.Type))
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			problems = append(problems, fmt.Sprintf("parameter %q: min %g > max %g", p.ID, *p.Min, *p.Max))
		}
		if p.Step != nil && *p.Step <= 0 {
			problems = append(problems, fmt.Sprintf("parameter %q: step must be positive", p.ID))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{ID: d.ID, Problems: problems}
	}
	return nil
}

// SupportsPlatform reports whether a host with the given graphics platform
// version can run the effect. Versions that are not semver-like on either
// side are accepted.
func (d *Descriptor) SupportsPlatform(platform string) bool {
	if platform == "" {
		return true
	}
	need, err := semver.NewVersion(d.MinPlatformVersion)
	if err != nil {
		return true
	}
	have, err := semver.NewVersion(platform)
	if err != nil {
		return true
	}
	return !have.LessThan(need)
}
