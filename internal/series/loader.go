package series

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// columnDoc is the YAML shape for one column of a series file.
type columnDoc struct {
	Type   string `yaml:"type"`
	Values []any  `yaml:"values"`
}

// seriesDoc is the YAML shape for a series file.
type seriesDoc struct {
	Columns map[string]columnDoc `yaml:"columns"`
}

// ParseYAML decodes a series from YAML bytes. Column types default to float
// when omitted; boolean columns accept YAML booleans only.
func ParseYAML(data []byte) (*Series, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("series: payload is empty")
	}
	var doc seriesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("series: decode: %w", err)
	}
	columns := make(map[string]Column, len(doc.Columns))
	for name, raw := range doc.Columns {
		col, err := buildColumn(raw)
		if err != nil {
			return nil, fmt.Errorf("series: column %s: %w", name, err)
		}
		columns[name] = col
	}
	return New(columns)
}

// LoadReader reads a series document from an io.Reader.
func LoadReader(r io.Reader) (*Series, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("series: read: %w", err)
	}
	return ParseYAML(content)
}

// LoadFile loads a series document from a file path.
func LoadFile(path string) (*Series, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("series: read %s: %w", path, err)
	}
	s, err := ParseYAML(content)
	if err != nil {
		return nil, fmt.Errorf("series: %s: %w", path, err)
	}
	return s, nil
}

func buildColumn(doc columnDoc) (Column, error) {
	kind := Kind(doc.Type)
	if doc.Type == "" {
		kind = KindFloat
	}
	switch kind {
	case KindFloat:
		values := make([]float64, 0, len(doc.Values))
		for i, raw := range doc.Values {
			v, ok := asFloat(raw)
			if !ok {
				return Column{}, fmt.Errorf("value %d (%v) is not numeric", i, raw)
			}
			values = append(values, v)
		}
		return FloatColumn(values...), nil
	case KindBool:
		values := make([]bool, 0, len(doc.Values))
		for i, raw := range doc.Values {
			v, ok := raw.(bool)
			if !ok {
				return Column{}, fmt.Errorf("value %d (%v) is not a boolean", i, raw)
			}
			values = append(values, v)
		}
		return BoolColumn(values...), nil
	default:
		return Column{}, fmt.Errorf("unknown type %q", doc.Type)
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
