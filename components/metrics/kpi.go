package metrics

import (
	"math"

	"github.com/goliatone/go-inkhub/components/datatable"
)

// Trend is the direction of a KPI change.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// KPIDefinition declares a built-in KPI card of a resource. An empty Field
// with OpCount counts entities instead of positive field values.
type KPIDefinition struct {
	Key       string    `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	Field     string    `json:"field,omitempty" yaml:"field,omitempty"`
	Operation Operation `json:"operation" yaml:"operation"`
	Formula   string    `json:"formula,omitempty" yaml:"formula,omitempty"`
	Icon      string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
	Currency  bool      `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// KPIMetric is a computed KPI card.
type KPIMetric struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Change  float64 `json:"change"`
	Trend   Trend   `json:"trend"`
	Icon    string  `json:"icon,omitempty"`
	Color   string  `json:"color,omitempty"`
}

// Compute evaluates the definition over entities. universe is the size of the
// unfiltered collection and is the denominator of OpPercentage.
func (d KPIDefinition) Compute(entities []datatable.Entity, universe int) float64 {
	if d.Field == "" {
		if d.Operation == OpCount {
			return float64(len(entities))
		}
		return 0
	}
	values := ExtractAll(entities, d.Field)
	return Aggregate(values, d.Operation, AggregateOptions{
		Formula:      d.Formula,
		UniverseSize: universe,
	})
}

func (d KPIDefinition) currency() bool {
	return d.Currency || IsCurrencyField(d.Field)
}

// Universe holds the unfiltered collection sizes behind a KPI computation.
type Universe struct {
	Current  int
	Baseline int
}

// ComputeKPIs recomputes every definition over the filtered set. When a
// baseline set is given, Change is the percent delta from the baseline value.
// A zero universe size falls back to the length of the matching set.
func ComputeKPIs(defs []KPIDefinition, filtered, baseline []datatable.Entity, universe Universe) []KPIMetric {
	if universe.Current <= 0 {
		universe.Current = len(filtered)
	}
	if universe.Baseline <= 0 {
		universe.Baseline = len(baseline)
	}
	out := make([]KPIMetric, 0, len(defs))
	for _, d := range defs {
		value := d.Compute(filtered, universe.Current)
		m := KPIMetric{
			Key:     d.Key,
			Label:   d.Label,
			Value:   value,
			Display: Format(value, FormatOptions{Currency: d.currency(), Abbreviate: true}),
			Trend:   TrendNeutral,
			Icon:    d.Icon,
			Color:   d.Color,
		}
		if baseline != nil {
			m.Change = PercentChange(d.Compute(baseline, universe.Baseline), value)
			m.Trend = TrendOf(m.Change)
		}
		out = append(out, m)
	}
	return out
}

// PercentChange returns the percent delta from previous to current, rounded
// to one decimal. A zero previous value yields 0.
func PercentChange(previous, current float64) float64 {
	if previous == 0 || math.IsNaN(previous) || math.IsInf(previous, 0) {
		return 0
	}
	change := (current - previous) / math.Abs(previous) * 100
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0
	}
	return math.Round(change*10) / 10
}

// TrendOf maps the sign of change to a trend.
func TrendOf(change float64) Trend {
	switch {
	case change > 0:
		return TrendUp
	case change < 0:
		return TrendDown
	}
	return TrendNeutral
}
