package predict

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile returns the p-th empirical quantile of sorted, interpolating
// linearly between order statistics: rank = p·(n−1), value between the
// flanking samples. Deterministic given the ensemble, and the same rule the
// quantile locator uses to position group levels.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= n {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// aggregate reduces one observation's link-scale samples to (fit, lwr, upr).
// Bounds are the (1±level)/2 empirical quantiles; fit is the median or mean
// per est.
//
// A heavily skewed ensemble can place the mean outside the central interval;
// the bounds are widened to keep lwr ≤ fit ≤ upr, a no-op for the median.
//
// ok is false when any sample is non-finite; the caller reports NaN for the
// whole row instead of aggregating garbage.
func aggregate(samples []float64, level float64, est PointEstimate) (fit, lwr, upr float64, ok bool) {
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.NaN(), math.NaN(), math.NaN(), false
		}
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	alpha := (1 - level) / 2
	lwr = quantile(sorted, alpha)
	upr = quantile(sorted, 1-alpha)
	if est == EstimateMean {
		fit = stat.Mean(sorted, nil)
	} else {
		fit = quantile(sorted, 0.5)
	}

	if fit < lwr {
		lwr = fit
	}
	if fit > upr {
		upr = fit
	}
	return fit, lwr, upr, true
}
