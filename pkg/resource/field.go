package resource

import (
	"fmt"
	"strconv"

	"github.com/towerops/towerctl/pkg/api"
)

// Kind describes how a field's raw CLI value is coerced before dispatch.
type Kind string

const (
	// KindString passes the value through unchanged.
	KindString Kind = "string"

	// KindBool parses the value with strconv.ParseBool.
	KindBool Kind = "bool"

	// KindInt parses the value as a base-10 integer.
	KindInt Kind = "int"

	// KindMapped translates a human input through the field's Choices.
	KindMapped Kind = "mapped"

	// KindFile marks a field whose value is the contents of a file the
	// CLI layer has already read (e.g. an SSH private key).
	KindFile Kind = "file"
)

// Choice maps a human-facing input to the value the API expects.
type Choice struct {
	Input string
	Value string
}

// Field is one declared attribute of a resource.
//
// Fields are immutable, constructed once at startup as part of a
// Descriptor, and shared by all requests.
type Field struct {
	// Name is the API attribute name.
	Name string

	// Required marks fields that must be present on create.
	Required bool

	// Unique marks fields that participate in identity lookups.
	Unique bool

	// Display controls whether list output shows this field.
	Display bool

	// Password marks secret fields; output masks their values.
	Password bool

	// Kind selects the coercion rule. Empty means KindString.
	Kind Kind

	// Choices is consulted when Kind is KindMapped.
	Choices []Choice

	// Default is used when the field is absent and a default exists.
	Default any

	// Help is the flag help text for the CLI layer.
	Help string
}

// Coerce converts a raw string value into the typed value sent to the API.
func (f Field) Coerce(raw string) (any, error) {
	switch f.Kind {
	case "", KindString, KindFile:
		return raw, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q wants a boolean, got %q", api.ErrValidation, f.Name, raw)
		}
		return b, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q wants an integer, got %q", api.ErrValidation, f.Name, raw)
		}
		return n, nil
	case KindMapped:
		for _, c := range f.Choices {
			if c.Input == raw {
				return c.Value, nil
			}
		}
		return nil, fmt.Errorf("%w: field %q does not accept %q", api.ErrValidation, f.Name, raw)
	default:
		return nil, fmt.Errorf("%w: field %q has unknown kind %q", api.ErrValidation, f.Name, f.Kind)
	}
}
