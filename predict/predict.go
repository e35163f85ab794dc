package predict

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PredictionRow is one observation's point estimate and interval bounds, on
// the scale selected by Options.Scale. All three fields are NaN when the
// observation's samples contained non-finite values.
type PredictionRow struct {
	Fit float64
	Lwr float64
	Upr float64
}

// PredictionResult has one row per scenario observation, in scenario order.
type PredictionResult []PredictionRow

// Intervals simulates the joint uncertainty of model and returns a prediction
// interval per scenario observation.
//
// One call draws a single sample ensemble and reuses it across observations:
// draws for a shared group level are shared, preserving the correlation
// between observations in the same group. Per-observation combination runs on
// a worker pool bounded by opts.Workers; results are identical regardless of
// scheduling because every random stream is derived up front from the seed.
//
// A failed call returns no partial result. Observations whose samples turn
// non-finite are reported as NaN rows with a logged warning; the rest of the
// table is unaffected.
func Intervals(model *ModelSummary, scenario Scenario, opts Options) (PredictionResult, error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model summary: %w", err)
	}
	link, err := resolveLink(model.Family, model.Link)
	if err != nil {
		return nil, fmt.Errorf("invalid model summary: %w", err)
	}

	// One row per observation, so an empty scenario is an empty table.
	if len(scenario) == 0 {
		return PredictionResult{}, nil
	}

	bound, err := bindScenario(model, scenario, &opts)
	if err != nil {
		return nil, err
	}

	if opts.MaxEnsembleBytes > 0 {
		if need := ensembleBytes(model, opts.NSamples); need > opts.MaxEnsembleBytes {
			return nil, fmt.Errorf("sample ensemble needs %d bytes, exceeding the configured ceiling of %d; lower n_samples",
				need, opts.MaxEnsembleBytes)
		}
	}

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := newPartitionedRNG(drawKey(seed))

	ens, err := drawEnsemble(model, opts.NSamples, rng)
	if err != nil {
		return nil, err
	}

	includeResid := opts.IncludeResidualVariance
	if includeResid && model.Family != FamilyGaussian {
		logrus.Warnf("residual variance requested for family %q; only meaningful for gaussian, ignoring", model.Family)
		includeResid = false
	}
	residSD := math.Sqrt(model.ResidualVariance)

	n := len(scenario)
	// Residual streams are derived here, on one goroutine, before fan-out.
	residRNGs := make([]*rand.Rand, n)
	if includeResid && residSD > 0 {
		for i := 0; i < n; i++ {
			residRNGs[i] = rng.forSubsystem(subsystemResidual(i))
		}
	}

	results := make(PredictionResult, n)
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			samples := combineObservation(bound, i, ens, residRNGs[i], residSD)
			fit, lwr, upr, ok := aggregate(samples, opts.Level, opts.PointEstimate)
			if !ok {
				logrus.Warnf("observation %d produced non-finite samples, reporting missing result", i)
				results[i] = PredictionRow{Fit: math.NaN(), Lwr: math.NaN(), Upr: math.NaN()}
				return nil
			}
			if opts.Scale == ScaleResponse {
				fit, lwr, upr = link.InvLink(fit), link.InvLink(lwr), link.InvLink(upr)
				if !finite(fit) || !finite(lwr) || !finite(upr) {
					logrus.Warnf("observation %d overflowed the inverse %s link, reporting missing result", i, link)
					results[i] = PredictionRow{Fit: math.NaN(), Lwr: math.NaN(), Upr: math.NaN()}
					return nil
				}
			}
			results[i] = PredictionRow{Fit: fit, Lwr: lwr, Upr: upr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
