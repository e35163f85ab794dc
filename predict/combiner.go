package predict

import (
	"math/rand"
)

// combineObservation assembles the S link-scale samples for one observation:
// dot(design row, fixed draw s) plus, for each grouping factor the row belongs
// to, the weighted random-effect terms from draw s of that row's level. The
// same level index always selects the same draws, so observations sharing a
// level stay correlated within the call.
//
// residRNG, when non-nil, adds an independent N(0, residSD²) draw per sample.
// It is a per-observation stream derived ahead of time, so combination stays
// deterministic under any worker scheduling.
func combineObservation(b *boundScenario, obs int, ens *sampleEnsemble, residRNG *rand.Rand, residSD float64) []float64 {
	out := make([]float64, ens.s)
	xrow := b.x.RawRowView(obs)

	for s := 0; s < ens.s; s++ {
		fix := ens.fixef.RawRowView(s)
		acc := 0.0
		for j, x := range xrow {
			acc += x * fix[j]
		}
		out[s] = acc
	}

	for fi := range b.factors {
		f := &b.factors[fi]
		if f.omit[obs] {
			continue
		}
		li := f.levels[obs]
		if li < 0 {
			// Zero policy: the population-average draw contributes nothing.
			continue
		}
		draws := ens.ranef[f.name][li]
		wrow := f.weights.RawRowView(obs)
		for s := 0; s < ens.s; s++ {
			row := draws.RawRowView(s)
			acc := 0.0
			for t, w := range wrow {
				acc += w * row[t]
			}
			out[s] += acc
		}
	}

	if residRNG != nil && residSD > 0 {
		for s := range out {
			out[s] += residRNG.NormFloat64() * residSD
		}
	}
	return out
}
