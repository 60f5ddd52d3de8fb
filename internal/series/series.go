package series

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies the value type a column holds.
type Kind string

const (
	KindFloat Kind = "float"
	KindBool  Kind = "bool"
)

// Column is one named track of a Series. Exactly one of Floats or Bools is
// populated, matching Kind.
type Column struct {
	Kind   Kind
	Floats []float64
	Bools  []bool
}

// Len returns the number of steps the column spans.
func (c Column) Len() int {
	if c.Kind == KindBool {
		return len(c.Bools)
	}
	return len(c.Floats)
}

// From returns the column restricted to steps at or after the given offset.
// Offsets past the end yield an empty column of the same kind.
func (c Column) From(offset int) Column {
	if offset < 0 {
		offset = 0
	}
	if offset > c.Len() {
		offset = c.Len()
	}
	out := Column{Kind: c.Kind}
	if c.Kind == KindBool {
		out.Bools = c.Bools[offset:]
	} else {
		out.Floats = c.Floats[offset:]
	}
	return out
}

// FloatColumn builds a numeric column.
func FloatColumn(values ...float64) Column {
	return Column{Kind: KindFloat, Floats: values}
}

// BoolColumn builds a boolean column.
func BoolColumn(values ...bool) Column {
	return Column{Kind: KindBool, Bools: values}
}

// Series is an immutable, fixed-length set of equally long named columns
// indexed by integer time step. A Series with no columns has length zero.
type Series struct {
	length  int
	columns map[string]Column
}

// New validates that every column has the same length and returns the
// assembled series. An empty column map is allowed and yields a zero-length
// series.
func New(columns map[string]Column) (*Series, error) {
	s := &Series{columns: make(map[string]Column, len(columns))}
	first := true
	for name, col := range columns {
		if name == "" {
			return nil, fmt.Errorf("series: column name is required")
		}
		if col.Kind != KindFloat && col.Kind != KindBool {
			return nil, fmt.Errorf("series: column %s has unknown kind %q", name, col.Kind)
		}
		if first {
			s.length = col.Len()
			first = false
		} else if col.Len() != s.length {
			return nil, fmt.Errorf("series: column %s has %d steps, expected %d", name, col.Len(), s.length)
		}
		s.columns[name] = col
	}
	return s, nil
}

// Len returns the number of time steps the series covers.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return s.length
}

// Empty reports whether the series holds no usable data.
func (s *Series) Empty() bool {
	return s.Len() == 0 || len(s.columns) == 0
}

// Columns returns the sorted column names.
func (s *Series) Columns() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column looks up a column by name.
func (s *Series) Column(name string) (Column, bool) {
	if s == nil {
		return Column{}, false
	}
	col, ok := s.columns[name]
	return col, ok
}

// From projects the series onto the steps at or after time t. The anchor is
// ceil(t): a view taken mid-step never exposes the step already underway.
// Views are recomputed on every call and hold no state of their own beyond
// the offset.
func (s *Series) From(t float64) *View {
	offset := int(math.Ceil(t))
	if offset < 0 {
		offset = 0
	}
	return &View{series: s, offset: offset}
}

// View is a read-only forecast slice of a Series anchored at a fixed step.
type View struct {
	series *Series
	offset int
}

// Len returns the number of steps remaining in the view.
func (v *View) Len() int {
	if v == nil || v.series == nil {
		return 0
	}
	n := v.series.Len() - v.offset
	if n < 0 {
		return 0
	}
	return n
}

// Empty reports whether the view exposes no usable data.
func (v *View) Empty() bool {
	return v == nil || v.series == nil || v.series.Empty() || v.Len() == 0
}

// Column returns the named column restricted to the view's window.
func (v *View) Column(name string) (Column, bool) {
	if v == nil || v.series == nil {
		return Column{}, false
	}
	col, ok := v.series.Column(name)
	if !ok {
		return Column{}, false
	}
	return col.From(v.offset), true
}

// Has reports whether the backing series defines the named column.
func (v *View) Has(name string) bool {
	if v == nil || v.series == nil {
		return false
	}
	_, ok := v.series.Column(name)
	return ok
}
