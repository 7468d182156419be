package parser

import (
	"fmt"
	"strings"
)

// TagKey is the struct tag key that marks a retained field.
const TagKey = "retain"

// TagOptions is a parsed retain tag.
type TagOptions struct {
	// Skip excludes the field. Set by "skip" and by "-".
	Skip      bool
	Transient bool
	Converter string
}

// ParseTag parses the value of a retain tag.
//
// Semantics:
//   - ""                           : retained with automatic resolution
//   - "-"                          : transient, never retained
//   - "skip"                       : not retained
//   - "converter=Name"             : retained through converter type Name
//   - "converter=import/path.Name" : converter declared in another package
//
// Options are comma separated and may not repeat.
func ParseTag(tag string) (TagOptions, error) {
	var opts TagOptions
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return opts, nil
	}
	if tag == "-" {
		opts.Skip = true
		opts.Transient = true
		return opts, nil
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		name, value, hasValue := strings.Cut(part, "=")
		if name == "" {
			return TagOptions{}, fmt.Errorf("empty option in retain tag %q", tag)
		}
		if seen[name] {
			return TagOptions{}, fmt.Errorf("duplicate option %q in retain tag %q", name, tag)
		}
		seen[name] = true

		switch name {
		case "skip":
			if hasValue {
				return TagOptions{}, fmt.Errorf("option skip takes no value")
			}
			opts.Skip = true
		case "converter":
			value = strings.TrimSpace(value)
			if !hasValue || value == "" {
				return TagOptions{}, fmt.Errorf("option converter needs a type name")
			}
			opts.Converter = value
		case "-":
			return TagOptions{}, fmt.Errorf(`"-" cannot be combined with other options`)
		default:
			return TagOptions{}, fmt.Errorf("unknown option %q in retain tag", name)
		}
	}
	return opts, nil
}
