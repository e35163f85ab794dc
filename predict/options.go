package predict

import (
	"fmt"
	"runtime"
)

// NewLevelPolicy decides what happens when a scenario references a
// grouping-factor level the model was not fit on.
type NewLevelPolicy string

const (
	// NewLevelFail aborts the call with an UnknownLevelError.
	NewLevelFail NewLevelPolicy = "fail"
	// NewLevelZero substitutes a zero random-effect draw for every sample,
	// i.e. a population-average prediction for that term. The default.
	NewLevelZero NewLevelPolicy = "zero"
	// NewLevelIgnore omits the factor's term from the observation's linear
	// predictor entirely, degrading to a model without that grouping factor.
	NewLevelIgnore NewLevelPolicy = "ignore"
)

// Scale selects which scale results are reported on.
type Scale string

const (
	ScaleLink     Scale = "link"
	ScaleResponse Scale = "response"
)

// PointEstimate selects how the fit column is computed from the ensemble.
type PointEstimate string

const (
	EstimateMean   PointEstimate = "mean"
	EstimateMedian PointEstimate = "median"
)

// ValidNewLevelPolicies is the set of recognized new-level policy names.
var ValidNewLevelPolicies = map[NewLevelPolicy]bool{NewLevelFail: true, NewLevelZero: true, NewLevelIgnore: true}

// ValidScales is the set of recognized result scales.
var ValidScales = map[Scale]bool{ScaleLink: true, ScaleResponse: true}

// ValidPointEstimates is the set of recognized point-estimate names.
var ValidPointEstimates = map[PointEstimate]bool{EstimateMean: true, EstimateMedian: true}

// Options configures one Intervals call. Start from DefaultOptions; the zero
// value is rejected by Validate (NSamples must be at least 1).
type Options struct {
	// NSamples is S, the number of joint draws. Precision grows with S at the
	// caller's cost; DefaultOptions uses 1000.
	NSamples int

	// Level is the two-sided interval coverage, in (0, 1).
	Level float64

	// IncludeResidualVariance adds per-sample residual noise so the interval
	// covers a new response realization rather than the conditional mean.
	// Gaussian family only: for other families the flag is ignored with a
	// logged warning, never silently applied.
	IncludeResidualVariance bool

	// Scale selects link or response scale for fit, lwr, and upr. Empty means
	// ScaleResponse. Aggregation always happens on the link scale first.
	Scale Scale

	// NewLevelPolicy applies to every grouping factor without an entry in
	// PerFactorPolicy. Empty means NewLevelZero.
	NewLevelPolicy NewLevelPolicy

	// PerFactorPolicy overrides NewLevelPolicy for named grouping factors.
	PerFactorPolicy map[string]NewLevelPolicy

	// PointEstimate selects the fit column statistic. Empty means
	// EstimateMedian; fit is the inverse link of the link-scale median (or
	// mean), consistent with the interval bounds.
	PointEstimate PointEstimate

	// Seed makes the call reproducible. Nil draws a seed from the clock.
	Seed *int64

	// Workers bounds the per-observation worker pool. Zero means GOMAXPROCS.
	Workers int

	// MaxEnsembleBytes caps the sample-ensemble footprint
	// (8·S·(P + Σ levels·terms) bytes). Zero means unbounded.
	MaxEnsembleBytes int64
}

// DefaultOptions returns the documented defaults: S=1000, 80% interval,
// residual variance included, response scale, zero new-level policy, median
// point estimate, clock seed.
func DefaultOptions() Options {
	return Options{
		NSamples:                1000,
		Level:                   0.8,
		IncludeResidualVariance: true,
		Scale:                   ScaleResponse,
		NewLevelPolicy:          NewLevelZero,
		PointEstimate:           EstimateMedian,
	}
}

// normalized fills the enum and worker defaults, leaving numeric fields for
// Validate to police.
func (o Options) normalized() Options {
	if o.Scale == "" {
		o.Scale = ScaleResponse
	}
	if o.NewLevelPolicy == "" {
		o.NewLevelPolicy = NewLevelZero
	}
	if o.PointEstimate == "" {
		o.PointEstimate = EstimateMedian
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Validate checks option names and parameter ranges.
func (o *Options) Validate() error {
	if o.NSamples < 1 {
		return fmt.Errorf("n_samples must be at least 1, got %d", o.NSamples)
	}
	if o.Level <= 0 || o.Level >= 1 {
		return fmt.Errorf("level must be in (0, 1), got %f", o.Level)
	}
	if !ValidScales[o.Scale] {
		return fmt.Errorf("unknown scale %q", o.Scale)
	}
	if !ValidNewLevelPolicies[o.NewLevelPolicy] {
		return fmt.Errorf("unknown new-level policy %q", o.NewLevelPolicy)
	}
	for factor, p := range o.PerFactorPolicy {
		if !ValidNewLevelPolicies[p] {
			return fmt.Errorf("unknown new-level policy %q for grouping factor %q", p, factor)
		}
	}
	if !ValidPointEstimates[o.PointEstimate] {
		return fmt.Errorf("unknown point estimate %q", o.PointEstimate)
	}
	if o.MaxEnsembleBytes < 0 {
		return fmt.Errorf("max ensemble bytes must be non-negative, got %d", o.MaxEnsembleBytes)
	}
	return nil
}

// policyFor resolves the effective new-level policy for a grouping factor.
func (o *Options) policyFor(factor string) NewLevelPolicy {
	if p, ok := o.PerFactorPolicy[factor]; ok {
		return p
	}
	return o.NewLevelPolicy
}
