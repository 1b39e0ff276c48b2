package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanStdev(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Zero(t, Mean(nil))

	assert.InDelta(t, 1.0, Stdev([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, Stdev([]float64{5}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestMinMaxFloat(t *testing.T) {
	assert.Equal(t, 3.0, MaxFloat([]float64{1, 3, 2}))
	assert.Equal(t, 1.0, MinFloat([]float64{1, 3, 2}))
	assert.True(t, math.IsInf(MaxFloat(nil), -1))
	assert.True(t, math.IsInf(MinFloat(nil), 1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, clamp(7, 0, 5))
	assert.Equal(t, 0.0, clamp(-7, 0, 5))
	assert.Equal(t, 3.0, clamp(3, 0, 5))
}

func TestActivations(t *testing.T) {
	sigmoid, err := GetActivation("sigmoid")
	assert.NoError(t, err)
	assert.InDelta(t, 0.5, sigmoid(0), 1e-9)
	assert.Greater(t, sigmoid(1), 0.5)

	tanh, err := GetActivation("tanh")
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, tanh(0), 1e-9)

	relu, err := GetActivation("relu")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, relu(-3))
	assert.Equal(t, 3.0, relu(3))

	clamped, err := GetActivation("clamped")
	assert.NoError(t, err)
	assert.Equal(t, 1.0, clamped(5))
	assert.Equal(t, -1.0, clamped(-5))

	identity, err := GetActivation("identity")
	assert.NoError(t, err)
	assert.Equal(t, 4.2, identity(4.2))

	// Aliases resolve to the same functions as their canonical names.
	_, err = GetActivation("gaussian")
	assert.NoError(t, err)
	_, err = GetActivation("absolute")
	assert.NoError(t, err)

	_, err = GetActivation("no-such-fn")
	assert.Error(t, err)
}

func TestAggregations(t *testing.T) {
	xs := []float64{1, -4, 3}

	sum, err := GetAggregation("sum")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, sum(xs))

	product, err := GetAggregation("product")
	assert.NoError(t, err)
	assert.Equal(t, -12.0, product(xs))

	maxAgg, err := GetAggregation("max")
	assert.NoError(t, err)
	assert.Equal(t, 3.0, maxAgg(xs))

	maxabs, err := GetAggregation("maxabs")
	assert.NoError(t, err)
	assert.Equal(t, -4.0, maxabs(xs))

	mean, err := GetAggregation("mean")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, mean(xs))

	_, err = GetAggregation("no-such-fn")
	assert.Error(t, err)
}
