package neat

import (
	"fmt"
	"math"
)

// AggregationType is the signature of a node aggregation function.
type AggregationType func(inputs []float64) float64

// AggregationFunctions maps config names to aggregation functions.
var AggregationFunctions = map[string]AggregationType{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"min":     AggregateMin,
	"max":     AggregateMax,
	"mean":    AggregateMean,
	"average": AggregateMean,
	"median":  AggregateMedian,
	"maxabs":  AggregateMaxAbs,
}

// GetAggregation retrieves an aggregation function by name.
func GetAggregation(name string) (AggregationType, error) {
	if fn, ok := AggregationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown aggregation function: %s", name)
}

// AggregateSum sums the inputs.
func AggregateSum(inputs []float64) float64 { return Sum(inputs) }

// AggregateProduct multiplies the inputs. The empty product is 1.
func AggregateProduct(inputs []float64) float64 {
	product := 1.0
	for _, v := range inputs {
		product *= v
	}
	return product
}

// AggregateMin returns the smallest input.
func AggregateMin(inputs []float64) float64 { return MinFloat(inputs) }

// AggregateMax returns the largest input.
func AggregateMax(inputs []float64) float64 { return MaxFloat(inputs) }

// AggregateMean averages the inputs.
func AggregateMean(inputs []float64) float64 { return Mean(inputs) }

// AggregateMedian returns the median input.
func AggregateMedian(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return Median(inputs)
}

// AggregateMaxAbs returns the input with the largest magnitude, preserving
// its sign.
func AggregateMaxAbs(inputs []float64) float64 {
	best := 0.0
	for _, v := range inputs {
		if math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}
