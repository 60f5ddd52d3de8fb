package series

import "testing"

func TestNewValidatesColumnLengths(t *testing.T) {
	_, err := New(map[string]Column{
		"wind": FloatColumn(1, 2, 3),
		"tide": FloatColumn(1, 2),
	})
	if err == nil {
		t.Fatalf("expected mismatched column lengths to fail")
	}
}

func TestNewRejectsUnknownKinds(t *testing.T) {
	_, err := New(map[string]Column{"wind": {Kind: "complex"}})
	if err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestEmptySeries(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !s.Empty() {
		t.Fatalf("expected empty series")
	}
	if got := s.From(0).Len(); got != 0 {
		t.Fatalf("empty view length = %d", got)
	}

	var nilSeries *Series
	if !nilSeries.Empty() {
		t.Fatalf("nil series should report empty")
	}
	if got := nilSeries.From(3).Len(); got != 0 {
		t.Fatalf("nil view length = %d", got)
	}
}

func TestViewAnchorsAtCeil(t *testing.T) {
	s, err := New(map[string]Column{"wind": FloatColumn(0, 1, 2, 3, 4, 5)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		at     float64
		length int
		first  float64
	}{
		{at: 0, length: 6, first: 0},
		{at: 0.1, length: 5, first: 1},
		{at: 2, length: 4, first: 2},
		{at: 2.9, length: 3, first: 3},
		{at: 6, length: 0},
		{at: 9.5, length: 0},
	}
	for _, tc := range cases {
		view := s.From(tc.at)
		if view.Len() != tc.length {
			t.Fatalf("From(%v).Len() = %d, want %d", tc.at, view.Len(), tc.length)
		}
		if tc.length == 0 {
			continue
		}
		col, ok := view.Column("wind")
		if !ok {
			t.Fatalf("From(%v): wind column missing", tc.at)
		}
		if col.Floats[0] != tc.first {
			t.Fatalf("From(%v) first value = %v, want %v", tc.at, col.Floats[0], tc.first)
		}
	}
}

func TestColumnLookup(t *testing.T) {
	s, err := New(map[string]Column{
		"wind":    FloatColumn(1, 2),
		"workday": BoolColumn(true, false),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Columns(); len(got) != 2 || got[0] != "wind" || got[1] != "workday" {
		t.Fatalf("Columns() = %v", got)
	}
	view := s.From(1)
	if !view.Has("workday") {
		t.Fatalf("view should expose workday")
	}
	col, ok := view.Column("workday")
	if !ok || col.Len() != 1 || col.Bools[0] != false {
		t.Fatalf("sliced workday = %+v", col)
	}
	if _, ok := view.Column("missing"); ok {
		t.Fatalf("missing column resolved")
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
columns:
  wind:
    type: float
    values: [5, 7.5, 12]
  workday:
    type: bool
    values: [true, false, true]
  depth:
    values: [10, 20, 30]
`
	s, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("length = %d, want 3", s.Len())
	}
	wind, _ := s.Column("wind")
	if wind.Kind != KindFloat || wind.Floats[1] != 7.5 {
		t.Fatalf("wind = %+v", wind)
	}
	depth, _ := s.Column("depth")
	if depth.Kind != KindFloat {
		t.Fatalf("depth should default to float, got %s", depth.Kind)
	}
	workday, _ := s.Column("workday")
	if workday.Kind != KindBool || workday.Bools[0] != true {
		t.Fatalf("workday = %+v", workday)
	}
}

func TestParseYAMLRejectsBadValues(t *testing.T) {
	cases := []string{
		"",
		"columns:\n  wind:\n    type: float\n    values: [1, nope]\n",
		"columns:\n  workday:\n    type: bool\n    values: [true, 3]\n",
		"columns:\n  wind:\n    type: complex\n    values: []\n",
		"columns:\n  wind:\n    values: [1, 2]\n  tide:\n    values: [1]\n",
	}
	for i, doc := range cases {
		if _, err := ParseYAML([]byte(doc)); err == nil {
			t.Fatalf("case %d: expected an error", i)
		}
	}
}
