package datatable

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Operator names a search condition comparison.
type Operator string

const (
	OpContains    Operator = "contains"
	OpEquals      Operator = "equals"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Connector joins a condition to the one before it.
type Connector string

const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// SearchCondition is one row of the advanced search builder.
type SearchCondition struct {
	Field     string    `json:"field" yaml:"field"`
	Operator  Operator  `json:"operator" yaml:"operator"`
	Value     string    `json:"value" yaml:"value"`
	Connector Connector `json:"connector,omitempty" yaml:"connector,omitempty"`
}

func (c SearchCondition) active() bool {
	return c.Field != "" && c.Value != ""
}

func (c SearchCondition) isOr() bool {
	return strings.EqualFold(string(c.Connector), string(ConnectorOr))
}

// Matches evaluates the condition against one entity. Unknown operators match.
func (c SearchCondition) Matches(e Entity) bool {
	raw := e.Get(c.Field)
	switch c.Operator {
	case OpGreaterThan, OpLessThan:
		left, ok := AsNumber(raw)
		if !ok || raw == nil {
			return false
		}
		right, ok := AsNumber(c.Value)
		if !ok {
			return false
		}
		if c.Operator == OpGreaterThan {
			return left > right
		}
		return left < right
	}
	field := strings.ToLower(AsString(raw))
	value := strings.ToLower(c.Value)
	switch c.Operator {
	case OpContains:
		return strings.Contains(field, value)
	case OpEquals:
		return field == value
	case OpStartsWith:
		return strings.HasPrefix(field, value)
	case OpEndsWith:
		return strings.HasSuffix(field, value)
	}
	return true
}

// MatchConditions combines conditions honoring connectors: AND binds tighter
// than OR and a missing connector means AND. Incomplete rows are ignored.
func MatchConditions(e Entity, conditions []SearchCondition) bool {
	result := false
	group := true
	first := true
	for _, c := range conditions {
		if !c.active() {
			continue
		}
		if !first && c.isOr() {
			result = result || group
			group = true
		}
		first = false
		group = group && c.Matches(e)
	}
	return result || group
}

// CustomFilter is a named equality filter. Multiple custom filters are ANDed.
type CustomFilter struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    string `json:"value" yaml:"value"`
}

// Matches reports whether the entity field stringifies exactly to Value.
func (f CustomFilter) Matches(e Entity) bool {
	return AsString(e.Get(f.Field)) == f.Value
}

// FilterValue is a column filter. Which members are set decides the kind:
// Values is an IN-filter, Text is read according to the column type, Min/Max
// is an inclusive numeric range and Start/End an inclusive date range.
type FilterValue struct {
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
	Values []string   `json:"values,omitempty" yaml:"values,omitempty"`
	Min    *float64   `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64   `json:"max,omitempty" yaml:"max,omitempty"`
	Start  *time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End    *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// TextFilter builds a text/select/expression column filter.
func TextFilter(text string) FilterValue { return FilterValue{Text: text} }

// InFilter builds a multi-select column filter.
func InFilter(values ...string) FilterValue { return FilterValue{Values: values} }

// IsEmpty reports whether the filter constrains nothing.
func (f FilterValue) IsEmpty() bool {
	return strings.TrimSpace(f.Text) == "" &&
		len(f.Values) == 0 &&
		f.Min == nil && f.Max == nil &&
		f.Start == nil && f.End == nil
}

// Matches evaluates the filter for the value of a column of the given type.
func (f FilterValue) Matches(kind ColumnType, raw any) bool {
	if len(f.Values) > 0 && !matchIn(f.Values, raw) {
		return false
	}
	if text := strings.TrimSpace(f.Text); text != "" && !matchText(kind, text, raw) {
		return false
	}
	if f.Min != nil || f.Max != nil {
		n, ok := AsNumber(raw)
		if !ok || raw == nil {
			return false
		}
		if f.Min != nil && n < *f.Min {
			return false
		}
		if f.Max != nil && n > *f.Max {
			return false
		}
	}
	if f.Start != nil || f.End != nil {
		t, ok := AsTime(raw)
		if !ok {
			return false
		}
		if f.Start != nil && t.Before(*f.Start) {
			return false
		}
		if f.End != nil && t.After(endOfDay(*f.End)) {
			return false
		}
	}
	return true
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

func matchIn(values []string, raw any) bool {
	candidates := []string{AsString(raw)}
	switch raw.(type) {
	case []string, []any:
		candidates = append(candidates, AsStringArray(raw)...)
	}
	for _, c := range candidates {
		for _, v := range values {
			if c == v {
				return true
			}
		}
	}
	return false
}

func matchText(kind ColumnType, text string, raw any) bool {
	field := AsString(raw)
	switch kind {
	case ColumnNumber:
		if expr, ok := parseNumberExpr(text); ok {
			n, ok := AsNumber(raw)
			if !ok || raw == nil {
				return false
			}
			return expr.eval(n)
		}
	case ColumnSelect, ColumnBoolean:
		return strings.EqualFold(field, text)
	case ColumnDate:
		return strings.HasPrefix(field, text)
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(text))
}

type numberExpr struct {
	op   string
	a, b float64
}

func (x numberExpr) eval(n float64) bool {
	switch x.op {
	case ">":
		return n > x.a
	case ">=":
		return n >= x.a
	case "<":
		return n < x.a
	case "<=":
		return n <= x.a
	case "!=":
		return n != x.a
	case "between":
		return n >= x.a && n <= x.b
	}
	return n == x.a
}

var rangeExpr = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)$`)

// parseNumberExpr reads ">100", ">=5", "<3", "<=2", "=7", "!=0", "10-20" or "42".
func parseNumberExpr(text string) (numberExpr, bool) {
	text = strings.TrimSpace(text)
	if m := rangeExpr.FindStringSubmatch(text); m != nil {
		a, _ := strconv.ParseFloat(m[1], 64)
		b, _ := strconv.ParseFloat(m[2], 64)
		if a > b {
			a, b = b, a
		}
		return numberExpr{op: "between", a: a, b: b}, true
	}
	for _, op := range []string{">=", "<=", "!=", ">", "<", "="} {
		if strings.HasPrefix(text, op) {
			v, err := strconv.ParseFloat(strings.TrimSpace(text[len(op):]), 64)
			if err != nil {
				return numberExpr{}, false
			}
			return numberExpr{op: op, a: v}, true
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return numberExpr{}, false
	}
	return numberExpr{op: "=", a: v}, true
}

// matchesSearch reports whether any attribute contains the lower-cased query.
func matchesSearch(e Entity, query string) bool {
	for _, v := range e {
		if strings.Contains(strings.ToLower(AsString(v)), query) {
			return true
		}
	}
	return false
}
