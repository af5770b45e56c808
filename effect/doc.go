// Package effect defines effect descriptors and parses them from the
// metadata block of an effect source unit.
//
// A source unit is WGSL fragment code whose first block comment holds
// "@tag value" lines:
//
//	/*
//	 * @shader Rain
//	 * @id rain
//	 * @version 1.2.0
//	 * @author Jane Doe
//	 * @license MIT
//	 * @minOpenGL 3.0
//	 * @tags weather, water
//	 * @param u_density float 0.5 min=0 max=1 step=0.05 name="Density" desc="Drops per column"
//	 * @param u_color color #9FB8FFCC name="Colour"
//	 */
//
// @shader, @id and @version are required. Each @param line declares one
// uniform: its identifier, a type (float, int, bool, color, vec2, vec3,
// vec4), a default value and optional key=value attributes.
//
// [Parse] is pure and atomic: it returns either a complete [Descriptor] or
// a [*ParseError], never a partial result.
package effect
