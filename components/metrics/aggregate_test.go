package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateOperations(t *testing.T) {
	values := []float64{10, 20, 30}

	assert.Equal(t, 60.0, Aggregate(values, OpSum, AggregateOptions{}))
	assert.Equal(t, 20.0, Aggregate(values, OpAverage, AggregateOptions{}))
	assert.Equal(t, 10.0, Aggregate(values, OpMin, AggregateOptions{}))
	assert.Equal(t, 30.0, Aggregate(values, OpMax, AggregateOptions{}))
	assert.Equal(t, 3.0, Aggregate(values, OpCount, AggregateOptions{}))
	assert.Equal(t, 20.0, Aggregate(values, OpDifference, AggregateOptions{}))
	assert.Equal(t, 30.0, Aggregate(values, OpPercentage, AggregateOptions{UniverseSize: 10}))
	assert.Equal(t, 0.0, Aggregate(values, OpPercentage, AggregateOptions{}))
	assert.Equal(t, 0.0, Aggregate(values, Operation("median"), AggregateOptions{}))
}

func TestAggregateEmptyInput(t *testing.T) {
	for _, op := range Operations {
		got := Aggregate(nil, op, AggregateOptions{UniverseSize: 5})
		assert.Equal(t, 0.0, got, string(op))
	}
}

func TestAggregateDropsNonPositiveValues(t *testing.T) {
	assert.Equal(t, 15.0, Aggregate(Positive([]float64{5, -3, 0, 10}), OpSum, AggregateOptions{}))
}

func TestExtractSkipsStaleIDs(t *testing.T) {
	entities := []datatable.Entity{
		{"id": "a", "price": 10},
		{"id": "b", "price": "abc"},
		{"id": "c", "price": "2.5"},
		{"id": "d", "price": -4},
	}

	values := Extract(entities, []string{"a", "b", "c", "d", "gone"}, "price")
	assert.Equal(t, []float64{10, 2.5}, values)

	assert.Equal(t, []float64{10, 2.5}, ExtractAll(entities, "price"))
}

func TestCustomFormulaScenario(t *testing.T) {
	values := []float64{10, 20, 30}
	vars := VarsOf(values)
	assert.Equal(t, Vars{Sum: 60, Count: 3, Min: 10, Max: 30, Average: 20}, vars)

	assert.Equal(t, 20.0, Aggregate(values, OpCustom, AggregateOptions{Formula: "sum / count"}))
	assert.Equal(t, 0.0, Aggregate(values, OpCustom, AggregateOptions{Formula: ""}))
	assert.Equal(t, 0.0, Aggregate(values, OpCustom, AggregateOptions{Formula: "sum; alert(1)"}))
}

func TestEvaluate(t *testing.T) {
	vars := Vars{Sum: 60, Count: 3, Min: 10, Max: 30, Average: 20}

	cases := []struct {
		formula string
		want    float64
	}{
		{"sum + count * 2", 66},
		{"(sum + count) * 2", 126},
		{"max - min", 20},
		{"-min + +max", 20},
		{"average / 4", 5},
		{"sum * 1.5", 90},
		{"sum / count $$", 20},
		{"2 - 3 - 4", -5},
		{"24 / 4 / 2", 3},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.formula, vars)
		require.NoError(t, err, tc.formula)
		assert.InDelta(t, tc.want, got, 1e-9, tc.formula)
	}
}

func TestEvaluateErrors(t *testing.T) {
	vars := Vars{Sum: 60, Count: 3}

	_, err := Evaluate("", vars)
	assert.ErrorIs(t, err, ErrEmptyFormula)

	_, err = Evaluate("foo bar", vars)
	assert.ErrorIs(t, err, ErrEmptyFormula)

	for _, formula := range []string{"sum +", "(sum", "sum count", "1..2", ")"} {
		v, err := Evaluate(formula, vars)
		assert.True(t, errors.Is(err, ErrInvalidFormula), formula)
		assert.Equal(t, 0.0, v, formula)
	}

	_, err = Evaluate("SUM", vars)
	assert.ErrorIs(t, err, ErrEmptyFormula)
	v, err := Evaluate("SUM * 1.5", vars)
	assert.ErrorIs(t, err, ErrInvalidFormula)
	assert.Equal(t, 0.0, v)
	v, err = Evaluate("Sum + 1", vars)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	assert.NoError(t, Validate("sum / count"))
	assert.Error(t, Validate("sum /"))
}

func TestEvaluateDivisionByZero(t *testing.T) {
	v, err := Evaluate("sum / 0", Vars{Sum: 5})
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	v, err = Evaluate("0 / 0", Vars{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}
