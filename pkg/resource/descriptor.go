package resource

import (
	"fmt"

	"github.com/towerops/towerctl/pkg/api"
)

// Descriptor declares a resource type: its endpoint, fields, and the
// identity tuple used for idempotent lookups.
//
// Descriptors are process-wide, read-only configuration built once at
// startup (see Builtin) and shared by all requests.
type Descriptor struct {
	// Name is the resource name, e.g. "project".
	Name string

	// Endpoint is the collection path, e.g. "/projects/".
	Endpoint string

	// Identity lists the field names that together uniquely identify an
	// instance. Empty means the unique fields are used.
	Identity []string

	// Fields declares the resource's attributes in display order.
	Fields []Field

	// CreateEndpoint, when set, overrides the collection endpoint for
	// create based on the payload (e.g. projects created inside an
	// organization).
	CreateEndpoint func(payload map[string]any) string
}

// Field returns the declared field with the given name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IdentityFields returns the identity tuple, falling back to the fields
// marked Unique when no explicit tuple was declared.
func (d *Descriptor) IdentityFields() []string {
	if len(d.Identity) > 0 {
		return d.Identity
	}
	var out []string
	for _, f := range d.Fields {
		if f.Unique {
			out = append(out, f.Name)
		}
	}
	return out
}

// ItemPath returns the path for one instance, e.g. "/projects/42/".
func (d *Descriptor) ItemPath(id int) string {
	return fmt.Sprintf("%s%d/", d.Endpoint, id)
}

// BuildPayload validates and coerces raw CLI values into a request body.
//
// When requireAll is set, every Required field must be present (create);
// otherwise only the supplied fields are validated (modify, filters).
// Unknown field names are rejected. On create, defaults are applied for
// absent fields that declare one.
func (d *Descriptor) BuildPayload(raw map[string]string, requireAll bool) (map[string]any, error) {
	payload := map[string]any{}
	for name, value := range raw {
		f, ok := d.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", api.ErrValidation, d.Name, name)
		}
		coerced, err := f.Coerce(value)
		if err != nil {
			return nil, err
		}
		payload[name] = coerced
	}
	if requireAll {
		for _, f := range d.Fields {
			if _, ok := payload[f.Name]; ok {
				continue
			}
			if f.Default != nil {
				payload[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, fmt.Errorf("%w: %s requires field %q", api.ErrValidation, d.Name, f.Name)
			}
		}
	}
	return payload, nil
}
