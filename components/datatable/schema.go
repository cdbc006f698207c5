package datatable

import (
	"strings"

	"github.com/ettle/strcase"
)

// ColumnType tells filters and formatters how to interpret an attribute.
type ColumnType string

const (
	ColumnText        ColumnType = "text"
	ColumnNumber      ColumnType = "number"
	ColumnDate        ColumnType = "date"
	ColumnSelect      ColumnType = "select"
	ColumnMultiSelect ColumnType = "multiselect"
	ColumnBoolean     ColumnType = "boolean"
)

// Column describes one attribute of a resource.
type Column struct {
	Key        string     `json:"key" yaml:"key"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type       ColumnType `json:"type,omitempty" yaml:"type,omitempty"`
	Currency   bool       `json:"currency,omitempty" yaml:"currency,omitempty"`
	Filterable bool       `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	Sortable   bool       `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Hidden     bool       `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// DisplayLabel returns the label or one derived from the key
// (compareAtPrice -> Compare At Price).
func (c Column) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return LabelFor(c.Key)
}

// LabelFor derives a human label from a camel or snake cased key.
func LabelFor(key string) string {
	words := strings.Split(strcase.ToSnake(key), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		if w == "id" {
			words[i] = "ID"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Schema is the ordered field-set descriptor of a resource. The zero value is
// valid and treats every attribute as text.
type Schema struct {
	Columns []Column `json:"columns" yaml:"columns"`
}

// NewSchema builds a schema from columns, defaulting empty types to text.
func NewSchema(columns ...Column) Schema {
	out := make([]Column, len(columns))
	for i, c := range columns {
		if c.Type == "" {
			c.Type = ColumnText
		}
		out[i] = c
	}
	return Schema{Columns: out}
}

// Column looks up a column by key.
func (s Schema) Column(key string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// TypeOf returns the column type of key, text when unknown.
func (s Schema) TypeOf(key string) ColumnType {
	if c, ok := s.Column(key); ok && c.Type != "" {
		return c.Type
	}
	return ColumnText
}

// Keys lists column keys in order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Filterable lists columns that accept column filters.
func (s Schema) Filterable() []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Filterable {
			out = append(out, c)
		}
	}
	return out
}

// CurrencyFields lists keys flagged as currency.
func (s Schema) CurrencyFields() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Currency {
			out = append(out, c.Key)
		}
	}
	return out
}

// NumericFields lists number columns, the candidates for KPI/custom cards.
func (s Schema) NumericFields() []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Type == ColumnNumber {
			out = append(out, c)
		}
	}
	return out
}

// Select resolves keys to columns, synthesizing text columns for unknown keys.
// An empty key list selects every visible column.
func (s Schema) Select(keys []string) []Column {
	if len(keys) == 0 {
		var out []Column
		for _, c := range s.Columns {
			if !c.Hidden {
				out = append(out, c)
			}
		}
		return out
	}
	out := make([]Column, 0, len(keys))
	for _, key := range keys {
		if c, ok := s.Column(key); ok {
			out = append(out, c)
			continue
		}
		out = append(out, Column{Key: key, Type: ColumnText})
	}
	return out
}
