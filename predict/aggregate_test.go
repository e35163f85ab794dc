package predict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_OrderingHolds(t *testing.T) {
	samples := []float64{5, 1, 4, 2, 3, 9, 0, 7, 8, 6}
	for _, est := range []PointEstimate{EstimateMean, EstimateMedian} {
		fit, lwr, upr, ok := aggregate(samples, 0.8, est)
		assert.True(t, ok)
		assert.LessOrEqual(t, lwr, fit, "estimate %s", est)
		assert.LessOrEqual(t, fit, upr, "estimate %s", est)
	}
}

func TestAggregate_DegenerateSamples(t *testing.T) {
	samples := []float64{2, 2, 2, 2, 2}
	fit, lwr, upr, ok := aggregate(samples, 0.95, EstimateMedian)
	assert.True(t, ok)
	assert.Equal(t, 2.0, fit)
	assert.Equal(t, 2.0, lwr)
	assert.Equal(t, 2.0, upr)
}

func TestAggregate_SingleSample(t *testing.T) {
	fit, lwr, upr, ok := aggregate([]float64{3.5}, 0.8, EstimateMean)
	assert.True(t, ok)
	assert.Equal(t, 3.5, fit)
	assert.Equal(t, 3.5, lwr)
	assert.Equal(t, 3.5, upr)
}

func TestAggregate_NonFiniteSamplesReportMissing(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		fit, lwr, upr, ok := aggregate([]float64{1, 2, bad, 4}, 0.8, EstimateMedian)
		assert.False(t, ok)
		assert.True(t, math.IsNaN(fit))
		assert.True(t, math.IsNaN(lwr))
		assert.True(t, math.IsNaN(upr))
	}
}

func TestAggregate_QuantileInterpolation(t *testing.T) {
	// Five sorted points: the 50% quantile is the middle order statistic and
	// the 80% interval bounds interpolate between neighbors.
	samples := []float64{10, 20, 30, 40, 50}
	fit, lwr, upr, ok := aggregate(samples, 0.8, EstimateMedian)
	assert.True(t, ok)
	assert.Equal(t, 30.0, fit)
	assert.Less(t, lwr, 20.0)
	assert.Greater(t, lwr, 10.0)
	assert.Greater(t, upr, 40.0)
	assert.Less(t, upr, 50.0)
}

func TestAggregate_WiderLevelWiderInterval(t *testing.T) {
	samples := make([]float64, 101)
	for i := range samples {
		samples[i] = float64(i)
	}
	_, lwr80, upr80, _ := aggregate(samples, 0.8, EstimateMedian)
	_, lwr95, upr95, _ := aggregate(samples, 0.95, EstimateMedian)
	assert.Less(t, lwr95, lwr80)
	assert.Greater(t, upr95, upr80)
}

func TestAggregate_MeanInsideWidenedInterval(t *testing.T) {
	// A pathologically skewed ensemble: the mean exceeds the 60% interval's
	// upper quantile, and the bound must widen to keep the ordering.
	samples := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1e9}
	fit, lwr, upr, ok := aggregate(samples, 0.6, EstimateMean)
	assert.True(t, ok)
	assert.LessOrEqual(t, lwr, fit)
	assert.GreaterOrEqual(t, upr, fit)
}
