package metrics

import (
	"math"

	"github.com/goliatone/go-inkhub/components/datatable"
)

// Operation names an aggregation.
type Operation string

const (
	OpSum        Operation = "sum"
	OpAverage    Operation = "average"
	OpMin        Operation = "min"
	OpMax        Operation = "max"
	OpCount      Operation = "count"
	OpPercentage Operation = "percentage"
	OpDifference Operation = "difference"
	OpCustom     Operation = "custom"
)

// Operations lists every supported operation in display order.
var Operations = []Operation{OpSum, OpAverage, OpMin, OpMax, OpCount, OpPercentage, OpDifference, OpCustom}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	for _, known := range Operations {
		if op == known {
			return true
		}
	}
	return false
}

// AggregateOptions carries the inputs only some operations need.
type AggregateOptions struct {
	// Formula is evaluated by OpCustom.
	Formula string
	// UniverseSize is the denominator of OpPercentage.
	UniverseSize int
}

// Aggregate reduces values to a single scalar. Empty input yields 0 for every
// operation; unknown operations yield 0.
func Aggregate(values []float64, op Operation, opts AggregateOptions) float64 {
	switch op {
	case OpSum:
		return sum(values)
	case OpAverage:
		if len(values) == 0 {
			return 0
		}
		return sum(values) / float64(len(values))
	case OpMin:
		lo, _ := bounds(values)
		return lo
	case OpMax:
		_, hi := bounds(values)
		return hi
	case OpCount:
		return float64(len(values))
	case OpPercentage:
		if opts.UniverseSize <= 0 {
			return 0
		}
		return float64(len(values)) / float64(opts.UniverseSize) * 100
	case OpDifference:
		lo, hi := bounds(values)
		return hi - lo
	case OpCustom:
		v, _ := Evaluate(opts.Formula, VarsOf(values))
		return v
	}
	return 0
}

// Vars are the named values a custom formula can reference.
type Vars struct {
	Sum     float64
	Count   float64
	Min     float64
	Max     float64
	Average float64
}

// VarsOf computes the formula variables of values.
func VarsOf(values []float64) Vars {
	lo, hi := bounds(values)
	v := Vars{
		Sum:   sum(values),
		Count: float64(len(values)),
		Min:   lo,
		Max:   hi,
	}
	if v.Count > 0 {
		v.Average = v.Sum / v.Count
	}
	return v
}

func (v Vars) lookup(name string) (float64, bool) {
	switch name {
	case "sum":
		return v.Sum, true
	case "count":
		return v.Count, true
	case "min":
		return v.Min, true
	case "max":
		return v.Max, true
	case "average":
		return v.Average, true
	}
	return 0, false
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Extract reads field from every entity whose id is in ids. Non-numeric values
// read as 0 and values <= 0 are dropped. Ids without a matching entity are
// skipped.
func Extract(entities []datatable.Entity, ids []string, field string) []float64 {
	index := datatable.Index(entities)
	raw := make([]float64, 0, len(ids))
	for _, id := range ids {
		e, ok := index[id]
		if !ok {
			continue
		}
		raw = append(raw, datatable.NumberOr(e.Get(field), 0))
	}
	return Positive(raw)
}

// ExtractAll is Extract over every entity.
func ExtractAll(entities []datatable.Entity, field string) []float64 {
	raw := make([]float64, 0, len(entities))
	for _, e := range entities {
		raw = append(raw, datatable.NumberOr(e.Get(field), 0))
	}
	return Positive(raw)
}

// Positive keeps the values greater than zero.
func Positive(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
