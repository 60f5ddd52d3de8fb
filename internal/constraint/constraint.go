// Package constraint implements the comparison predicates that gate task
// execution against forecast data. Each constraint is a tagged variant (kind
// plus numeric threshold) applied column-wise to produce boolean masks; a set
// of constraints folds those masks together with a logical AND.
package constraint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/tidewatch/internal/series"
)

// Kind enumerates the supported predicate variants.
type Kind string

const (
	KindInvalid Kind = ""
	KindGT      Kind = "gt"
	KindGE      Kind = "ge"
	KindLT      Kind = "lt"
	KindLE      Kind = "le"
	KindIsTrue  Kind = "is_true"
	KindIsFalse Kind = "is_false"
)

// Constraint is a pure predicate over one column's values. The zero value is
// invalid and is silently discarded during composition.
type Constraint struct {
	kind      Kind
	threshold float64
}

// GT builds a strictly-greater-than predicate.
func GT(threshold float64) Constraint { return Constraint{kind: KindGT, threshold: threshold} }

// GE builds a greater-or-equal predicate.
func GE(threshold float64) Constraint { return Constraint{kind: KindGE, threshold: threshold} }

// LT builds a strictly-less-than predicate.
func LT(threshold float64) Constraint { return Constraint{kind: KindLT, threshold: threshold} }

// LE builds a less-or-equal predicate.
func LE(threshold float64) Constraint { return Constraint{kind: KindLE, threshold: threshold} }

// IsTrue builds a predicate satisfied where the column is truthy.
func IsTrue() Constraint { return Constraint{kind: KindIsTrue} }

// IsFalse builds the logical complement of IsTrue.
func IsFalse() Constraint { return Constraint{kind: KindIsFalse} }

// Parse builds a constraint from an untyped operator/threshold pair, as
// produced by decoding YAML or JSON. Comparison operators require a numeric,
// non-boolean threshold and fail with a type error otherwise; is_true and
// is_false reject any threshold.
func Parse(op string, threshold any) (Constraint, error) {
	kind := Kind(strings.TrimSpace(strings.ToLower(op)))
	switch kind {
	case KindGT, KindGE, KindLT, KindLE:
		v, err := numericThreshold(kind, threshold)
		if err != nil {
			return Constraint{}, err
		}
		return Constraint{kind: kind, threshold: v}, nil
	case KindIsTrue, KindIsFalse:
		if threshold != nil {
			return Constraint{}, fmt.Errorf("constraint: %q takes no threshold, got %v", kind, threshold)
		}
		return Constraint{kind: kind}, nil
	default:
		return Constraint{}, fmt.Errorf("constraint: unknown operator %q", op)
	}
}

func numericThreshold(kind Kind, raw any) (float64, error) {
	switch v := raw.(type) {
	case bool:
		return 0, fmt.Errorf("constraint: %q requires a numeric threshold, got boolean %v", kind, v)
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("constraint: %q requires a numeric threshold, got %T", kind, raw)
	}
}

// Valid reports whether the constraint holds a recognized kind.
func (c Constraint) Valid() bool {
	switch c.kind {
	case KindGT, KindGE, KindLT, KindLE, KindIsTrue, KindIsFalse:
		return true
	}
	return false
}

// Kind returns the predicate variant.
func (c Constraint) Kind() Kind { return c.kind }

// String renders the constraint the way it reads in diagnostics, e.g.
// " > 15" or " is true".
func (c Constraint) String() string {
	switch c.kind {
	case KindGT:
		return fmt.Sprintf(" > %v", c.threshold)
	case KindGE:
		return fmt.Sprintf(" >= %v", c.threshold)
	case KindLT:
		return fmt.Sprintf(" < %v", c.threshold)
	case KindLE:
		return fmt.Sprintf(" <= %v", c.threshold)
	case KindIsTrue:
		return " is true"
	case KindIsFalse:
		return " is false"
	default:
		return " (invalid)"
	}
}

// Apply evaluates the predicate against every value of the column and returns
// a same-length boolean mask. Numeric comparisons coerce boolean columns to
// 0/1; truthiness predicates coerce numeric columns to value != 0.
func (c Constraint) Apply(col series.Column) []bool {
	n := col.Len()
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		mask[i] = c.holds(col, i)
	}
	return mask
}

func (c Constraint) holds(col series.Column, i int) bool {
	switch c.kind {
	case KindGT:
		return numericAt(col, i) > c.threshold
	case KindGE:
		return numericAt(col, i) >= c.threshold
	case KindLT:
		return numericAt(col, i) < c.threshold
	case KindLE:
		return numericAt(col, i) <= c.threshold
	case KindIsTrue:
		return truthyAt(col, i)
	case KindIsFalse:
		return !truthyAt(col, i)
	default:
		return false
	}
}

func numericAt(col series.Column, i int) float64 {
	if col.Kind == series.KindBool {
		if col.Bools[i] {
			return 1
		}
		return 0
	}
	return col.Floats[i]
}

func truthyAt(col series.Column, i int) bool {
	if col.Kind == series.KindBool {
		return col.Bools[i]
	}
	return col.Floats[i] != 0
}

// Set maps column names to the constraint gating that column.
type Set map[string]Constraint

// Applicable filters the set down to entries whose key names a column of the
// view and whose constraint is recognized. Everything else is dropped without
// error: permissive filtering here is deliberate, so callers can pass a
// superset of constraints and let the available data decide what applies.
func (s Set) Applicable(v *series.View) Set {
	if len(s) == 0 || v == nil {
		return Set{}
	}
	out := Set{}
	for name, c := range s {
		if !c.Valid() {
			continue
		}
		if !v.Has(name) {
			continue
		}
		out[name] = c
	}
	return out
}

// Mask evaluates every applicable constraint against the view and folds the
// per-column masks with a logical AND. An empty applicable set yields an
// all-true mask spanning the view.
func (s Set) Mask(v *series.View) []bool {
	n := v.Len()
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	for name, c := range s.Applicable(v) {
		col, ok := v.Column(name)
		if !ok {
			continue
		}
		for i, hold := range c.Apply(col) {
			mask[i] = mask[i] && hold
		}
	}
	return mask
}

// String renders the set for error messages, one column per line in sorted
// order.
func (s Set) String() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "\n\t\t'%s%s'", name, s[name])
	}
	return b.String()
}
