// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// metaLine is one line of the metadata block with its source line number.
type metaLine struct {
	num  int
	text string
}

// Parse extracts the effect descriptor from the metadata block of source.
// ref identifies the source in errors and is stored as the descriptor's
// SourceRef.
//
// Tag values are trimmed and NFC-normalised. The first occurrence of a
// single-valued tag wins and unknown tags are ignored.
func Parse(source, ref string) (*Descriptor, error) {
	lines, ok := metadataBlock(source)
	if !ok {
		return nil, &ParseError{Kind: ErrNoMetadataBlock, Ref: ref}
	}

	d := &Descriptor{SourceRef: ref}
	single := map[string]*string{
		"shader":      &d.Name,
		"id":          &d.ID,
		"version":     &d.Version,
		"author":      &d.Author,
		"source":      &d.Source,
		"license":     &d.License,
		"description": &d.Description,
		"minOpenGL":   &d.MinPlatformVersion,
	}
	set := make(map[string]bool)

	for _, l := range lines {
		tag, value, ok := splitTag(l.text)
		if !ok {
			continue
		}
		switch tag {
		case "tags":
			d.Tags = appendTags(d.Tags, value)
		case "param":
			p, err := parseParam(value)
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					pe.Ref, pe.Line, pe.Text = ref, l.num, l.text
					return nil, pe
				}
				return nil, err
			}
			d.Parameters = append(d.Parameters, *p)
		default:
			if dst, known := single[tag]; known && !set[tag] {
				*dst = value
				set[tag] = true
			}
		}
	}

	for _, tag := range []string{"id", "shader", "version"} {
		if *single[tag] == "" {
			return nil, &ParseError{Kind: ErrMissingRequiredTag, Ref: ref, Tag: tag}
		}
	}
	if d.MinPlatformVersion == "" {
		d.MinPlatformVersion = DefaultMinPlatformVersion
	}
	return d, nil
}

// metadataBlock returns the lines of the first block comment that contains
// at least one tag line.
func metadataBlock(src string) ([]metaLine, bool) {
	offset := 0
	for {
		start := strings.Index(src[offset:], "/*")
		if start < 0 {
			return nil, false
		}
		start += offset
		end := strings.Index(src[start+2:], "*/")
		if end < 0 {
			return nil, false
		}
		end += start + 2

		first := strings.Count(src[:start], "\n") + 1
		var lines []metaLine
		tagged := false
		for i, raw := range strings.Split(src[start+2:end], "\n") {
			text := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "*"))
			if strings.HasPrefix(text, "@") {
				tagged = true
			}
			lines = append(lines, metaLine{num: first + i, text: text})
		}
		if tagged {
			return lines, true
		}
		offset = end + 2
	}
}

// splitTag splits "@tag value" into its parts.
func splitTag(line string) (tag, value string, ok bool) {
	if !strings.HasPrefix(line, "@") {
		return "", "", false
	}
	tag = line[1:]
	if i := strings.IndexAny(tag, " \t"); i >= 0 {
		tag, value = tag[:i], tag[i+1:]
	}
	if tag == "" {
		return "", "", false
	}
	return tag, norm.NFC.String(strings.TrimSpace(value)), true
}

func appendTags(tags []string, value string) []string {
	for _, t := range strings.Split(value, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseParam parses the text after "@param". Errors are *ParseError values
// without location; the caller fills it in.
func parseParam(text string) (*Parameter, error) {
	fields, err := tokenize(text)
	if err != nil {
		return nil, &ParseError{Kind: ErrMalformedParameter, Err: err}
	}
	if len(fields) < 3 {
		return nil, &ParseError{Kind: ErrMalformedParameter, Err: fmt.Errorf("want <id> <type> <default>, got %d fields", len(fields))}
	}

	p := &Parameter{ID: fields[0], Name: fields[0]}
	typ, ok := ParseParamType(fields[1])
	if !ok {
		return nil, &ParseError{Kind: ErrInvalidParameterType, Err: fmt.Errorf("unknown type %q", fields[1])}
	}
	p.Type = typ

	def, err := typ.ParseValue(fields[2])
	if err != nil {
		return nil, &ParseError{Kind: ErrInvalidDefaultValue, Err: fmt.Errorf("%s default %q: %w", typ, fields[2], err)}
	}
	p.Default = def

	for _, f := range fields[3:] {
		key, val, found := strings.Cut(f, "=")
		if !found {
			return nil, &ParseError{Kind: ErrMalformedParameter, Err: fmt.Errorf("expected key=value, got %q", f)}
		}
		switch key {
		case "min", "max", "step":
			x, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, &ParseError{Kind: ErrMalformedParameter, Err: fmt.Errorf("%s=%q: %w", key, val, err)}
			}
			if !typ.Numeric() {
				continue
			}
			switch key {
			case "min":
				p.Min = &x
			case "max":
				p.Max = &x
			default:
				p.Step = &x
			}
		case "name":
			p.Name = val
		case "desc":
			p.Description = val
		}
	}
	return p, nil
}

// tokenize splits on whitespace, keeping double-quoted runs together and
// removing the quotes: name="Flake size" yields name=Flake size.
func tokenize(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		out = append(out, cur.String())
	}
	return out, nil
}
