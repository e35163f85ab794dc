// Package predict computes Monte Carlo prediction intervals for fitted
// mixed-effects (linear and generalized-linear) models.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - model.go: ModelSummary, the fitted-model statistics supplied by the caller
//   - sampler.go: joint multivariate-normal draws of fixed and random effects
//   - predict.go: Intervals(), the orchestrator tying sampling, combination,
//     and aggregation together
//
// # Architecture
//
// The engine never fits a model. The caller supplies a ModelSummary (point
// estimates, covariance matrices, conditional modes, residual variance,
// family/link) produced by an external fitting library, plus a Scenario of
// observations to predict. One call draws a single SampleEnsemble — S joint
// draws of every fixed-effect coefficient and every known group level's
// random-effect vector — and reuses it across all observations, so two
// observations sharing a group level see the same draws for that level.
// Per-observation work is independent and runs on a bounded worker pool.
//
// Aggregation happens on the link scale: fit, lwr, and upr are taken from the
// link-scale sample ensemble and then passed through the inverse link when
// results are requested on the response scale. All supported inverse links are
// monotonic increasing, so interval quantiles survive the transform.
//
// # Key Types
//
//   - ModelSummary / RanefGroup: the fitted-model boundary, validated once
//   - Scenario / Observation: rows to predict, bound to the model's design once
//   - Options: sample count, interval level, scale, new-level policy, seed
//   - PredictionResult: one {Fit, Lwr, Upr} row per observation, in input order
//
// LevelAtQuantile locates the group level whose conditional-mode magnitude
// sits at a requested quantile, for building what-if scenarios.
package predict
