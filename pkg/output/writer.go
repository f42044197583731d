// Package output renders command results.
//
// Results come back from the API as ordered maps so display order
// matches the server's serializers; every format here preserves that
// order.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/resource"
)

// Format selects how results are rendered.
type Format string

const (
	// FormatText renders key=value lines and tab-aligned tables.
	FormatText Format = "text"

	// FormatJSON renders indented JSON with server key order.
	FormatJSON Format = "json"

	// FormatYAML renders YAML with server key order.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", api.ErrValidation, s)
	}
}

// Writer renders command results to an io.Writer in one format.
type Writer struct {
	out    io.Writer
	format Format
}

// NewWriter builds a Writer.
func NewWriter(out io.Writer, format Format) *Writer {
	if format == "" {
		format = FormatText
	}
	return &Writer{out: out, format: format}
}

// WriteResult renders a single record or result object.
func (w *Writer) WriteResult(res *api.OrderedMap) error {
	switch w.format {
	case FormatJSON:
		return w.writeJSON(res)
	case FormatYAML:
		return w.writeYAML(res)
	default:
		for _, k := range res.Keys() {
			v, _ := res.Get(k)
			if _, err := fmt.Fprintf(w.out, "%s=%s\n", k, scalarString(v)); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteList renders a page of records. Text format shows the id plus the
// fields marked for display, as a tab-aligned table; password fields are
// masked.
func (w *Writer) WriteList(fields []resource.Field, page *resource.Page) error {
	if w.format != FormatText {
		list := api.NewOrderedMap()
		list.Set("count", page.Count)
		results := make([]any, len(page.Results))
		for i, r := range page.Results {
			results[i] = r
		}
		list.Set("results", results)
		return w.WriteResult(list)
	}

	if len(page.Results) == 0 {
		_, err := fmt.Fprintln(w.out, "No results found")
		return err
	}

	display := make([]resource.Field, 0, len(fields))
	for _, f := range fields {
		if f.Display {
			display = append(display, f)
		}
	}

	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	header := []string{"ID"}
	for _, f := range display {
		header = append(header, strings.ToUpper(f.Name))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, rec := range page.Results {
		row := []string{scalarString(mustGet(rec, "id"))}
		for _, f := range display {
			if f.Password {
				row = append(row, "********")
				continue
			}
			row = append(row, scalarString(mustGet(rec, f.Name)))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeJSON(res *api.OrderedMap) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(b))
	return err
}

func (w *Writer) writeYAML(res *api.OrderedMap) error {
	node, err := yamlNode(res)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

// yamlNode converts a decoded value into a yaml.Node tree, keeping map
// key order (yaml.Marshal on a Go map would sort keys).
func yamlNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *api.OrderedMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.Keys() {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			val, _ := t.Get(k)
			valNode, err := yamlNode(val)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, keyNode, valNode)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			en, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case json.Number:
		// Re-type numbers so they are not emitted as quoted strings.
		var scalar any
		if i, err := t.Int64(); err == nil {
			scalar = i
		} else if f, err := t.Float64(); err == nil {
			scalar = f
		} else {
			scalar = t.String()
		}
		n := &yaml.Node{}
		if err := n.Encode(scalar); err != nil {
			return nil, err
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(t); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func mustGet(m *api.OrderedMap, key string) any {
	v, _ := m.Get(key)
	return v
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprintf("%t", t)
	case *api.OrderedMap:
		b, err := json.Marshal(t)
		if err != nil {
			return "-"
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}
