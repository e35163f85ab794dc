package predict

import (
	"fmt"
	"math"
	"sort"
)

// LevelAtQuantile returns the level of the named grouping factor whose
// conditional-mode magnitude sits at quantile q of the factor's levels. term
// selects which conditional-mode component to rank by; empty means
// InterceptTerm when the factor has one, otherwise its first term.
//
// Levels are ranked ascending by the chosen component (ties broken by level
// name for determinism) and q maps to rank round((n−1)·q) — the linear
// interpolation position used by the interval aggregator, rounded to a whole
// rank because levels are discrete. q=0.5 over an odd level count returns the
// middle element exactly.
//
// Pure function over the model summary; no randomness. Useful for building
// what-if scenarios around, say, the 10th-percentile group.
func LevelAtQuantile(model *ModelSummary, factor string, q float64, term string) (string, error) {
	levels, err := LevelsAtQuantiles(model, factor, []float64{q}, term)
	if err != nil {
		return "", err
	}
	return levels[0], nil
}

// LevelsAtQuantiles is LevelAtQuantile over a sequence of quantiles, ranking
// the factor's levels once.
func LevelsAtQuantiles(model *ModelSummary, factor string, qs []float64, term string) ([]string, error) {
	g := model.group(factor)
	if g == nil {
		return nil, fmt.Errorf("model has no grouping factor %q", factor)
	}
	ti, err := termIndex(g, term)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(g.Levels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := g.CondModes[order[a]][ti], g.CondModes[order[b]][ti]
		if va != vb {
			return va < vb
		}
		return g.Levels[order[a]] < g.Levels[order[b]]
	})

	out := make([]string, len(qs))
	n := len(order)
	for i, q := range qs {
		if q < 0 || q > 1 {
			return nil, fmt.Errorf("quantile must be in [0, 1], got %f", q)
		}
		rank := int(math.Floor(float64(n-1)*q + 0.5))
		out[i] = g.Levels[order[rank]]
	}
	return out, nil
}

func termIndex(g *RanefGroup, term string) (int, error) {
	if term == "" {
		for i, t := range g.Terms {
			if t == InterceptTerm {
				return i, nil
			}
		}
		return 0, nil
	}
	for i, t := range g.Terms {
		if t == term {
			return i, nil
		}
	}
	return 0, fmt.Errorf("grouping factor %q has no random-effect term %q", g.Name, term)
}
