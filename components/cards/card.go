package cards

import (
	"math"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

// CustomCard is a user-authored summary metric. The JSON shape is the stored
// preference shape.
type CustomCard struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Field            string            `json:"field"`
	Operation        metrics.Operation `json:"operation"`
	Formula          string            `json:"formula,omitempty"`
	SelectedProducts []string          `json:"selectedProducts"`
	Color            string            `json:"color,omitempty"`
	Icon             string            `json:"icon,omitempty"`
	IsVisible        bool              `json:"isVisible"`
	ComputedValue    float64           `json:"computedValue"`
}

// Patch holds the editable attributes of a card. Nil members are unchanged.
type Patch struct {
	Title            *string            `json:"title,omitempty"`
	Field            *string            `json:"field,omitempty"`
	Operation        *metrics.Operation `json:"operation,omitempty"`
	Formula          *string            `json:"formula,omitempty"`
	SelectedProducts *[]string          `json:"selectedProducts,omitempty"`
	Color            *string            `json:"color,omitempty"`
	Icon             *string            `json:"icon,omitempty"`
	IsVisible        *bool              `json:"isVisible,omitempty"`
}

func (p Patch) apply(c CustomCard) CustomCard {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Field != nil {
		c.Field = *p.Field
	}
	if p.Operation != nil {
		c.Operation = *p.Operation
	}
	if p.Formula != nil {
		c.Formula = *p.Formula
	}
	if p.SelectedProducts != nil {
		c.SelectedProducts = append([]string{}, (*p.SelectedProducts)...)
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.IsVisible != nil {
		c.IsVisible = *p.IsVisible
	}
	return c
}

// Result is a computed card.
type Result struct {
	Card    CustomCard `json:"card"`
	Value   float64    `json:"value"`
	Display string     `json:"display"`
	// FormulaError is set when a custom formula does not parse. Value is 0 then.
	FormulaError string `json:"formulaError,omitempty"`
	// Matched is the number of selected ids still present in the working set.
	Matched int `json:"matched"`
}

// Compute aggregates the card over its selected subset of entities. Ids that
// no longer exist are skipped. The percentage universe is len(entities).
func Compute(card CustomCard, entities []datatable.Entity) Result {
	values := metrics.Extract(entities, card.SelectedProducts, card.Field)
	value := metrics.Aggregate(values, card.Operation, metrics.AggregateOptions{
		Formula:      card.Formula,
		UniverseSize: len(entities),
	})
	res := Result{
		Card:    card,
		Value:   value,
		Display: metrics.FormatField(value, card.Field, true),
		Matched: matched(entities, card.SelectedProducts),
	}
	if card.Operation == metrics.OpCustom {
		if _, err := metrics.Evaluate(card.Formula, metrics.VarsOf(values)); err != nil {
			res.FormulaError = err.Error()
		}
	}
	res.Card.ComputedValue = storable(value)
	return res
}

func matched(entities []datatable.Entity, ids []string) int {
	index := datatable.Index(entities)
	n := 0
	for _, id := range ids {
		if _, ok := index[id]; ok {
			n++
		}
	}
	return n
}

// storable maps non-finite values to 0 since JSON cannot carry them.
func storable(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
