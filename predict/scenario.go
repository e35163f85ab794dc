package predict

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Observation is one row to predict: covariate values by design-column name
// plus a level value for each of the model's grouping factors.
type Observation struct {
	Covariates map[string]float64
	Groups     map[string]string
}

// Scenario is an ordered sequence of observations. Results come back in the
// same order.
type Scenario []Observation

// boundScenario is the scenario after one-time validation against the model:
// a dense design matrix plus, per grouping factor, resolved level indices and
// term weights. All name matching happens here; the hot path only indexes.
type boundScenario struct {
	x       *mat.Dense // N x P design matrix
	factors []boundFactor
}

type boundFactor struct {
	name    string
	levels  []int      // per observation: index into the factor's Levels, -1 = zero draw
	omit    []bool     // per observation: term omitted (ignore policy)
	weights *mat.Dense // N x T term weights: 1 for intercept terms, covariate value for slopes
}

// bindScenario validates the scenario against the model design exactly once.
// It returns DimensionMismatchError when columns do not align and
// UnknownLevelError when a new level meets the fail policy.
func bindScenario(model *ModelSummary, scenario Scenario, opts *Options) (*boundScenario, error) {
	n := len(scenario)
	p := len(model.Coefs)

	// Names the design consumes: fixed-effect coefficients plus every
	// random-slope term. Anything else in an observation is an extra column.
	used := make(map[string]bool, p)
	for _, c := range model.Coefs {
		used[c.Name] = true
	}
	for gi := range model.Groups {
		for _, term := range model.Groups[gi].Terms {
			used[term] = true
		}
	}

	missing := make(map[string]bool)
	extra := make(map[string]bool)
	for oi := range scenario {
		obs := &scenario[oi]
		for name := range obs.Covariates {
			if !used[name] {
				extra[name] = true
			}
		}
		for name := range obs.Groups {
			if model.group(name) == nil {
				extra[name] = true
			}
		}
		for _, c := range model.Coefs {
			if c.Name == InterceptTerm {
				continue
			}
			if _, ok := obs.Covariates[c.Name]; !ok {
				missing[c.Name] = true
			}
		}
		for gi := range model.Groups {
			g := &model.Groups[gi]
			if _, ok := obs.Groups[g.Name]; !ok {
				missing[g.Name] = true
			}
			for _, term := range g.Terms {
				if term == InterceptTerm {
					continue
				}
				if _, ok := obs.Covariates[term]; !ok {
					missing[term] = true
				}
			}
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return nil, &DimensionMismatchError{Missing: sortedKeys(missing), Extra: sortedKeys(extra)}
	}

	b := &boundScenario{x: mat.NewDense(n, p, nil)}
	for oi := range scenario {
		obs := &scenario[oi]
		for ci, c := range model.Coefs {
			if c.Name == InterceptTerm {
				b.x.Set(oi, ci, 1)
			} else {
				b.x.Set(oi, ci, obs.Covariates[c.Name])
			}
		}
	}

	for gi := range model.Groups {
		g := &model.Groups[gi]
		policy := opts.policyFor(g.Name)
		f := boundFactor{
			name:    g.Name,
			levels:  make([]int, n),
			omit:    make([]bool, n),
			weights: mat.NewDense(n, len(g.Terms), nil),
		}
		for oi := range scenario {
			obs := &scenario[oi]
			level := obs.Groups[g.Name]
			li := g.levelIndex(level)
			if li < 0 {
				switch policy {
				case NewLevelFail:
					return nil, &UnknownLevelError{Factor: g.Name, Level: level}
				case NewLevelIgnore:
					logrus.Warnf("grouping factor %q: level %q unknown to the model, omitting its term for observation %d",
						g.Name, level, oi)
					f.omit[oi] = true
				default: // NewLevelZero
					logrus.Warnf("grouping factor %q: level %q unknown to the model, using population-average (zero) effect for observation %d",
						g.Name, level, oi)
				}
			}
			f.levels[oi] = li
			for ti, term := range g.Terms {
				if term == InterceptTerm {
					f.weights.Set(oi, ti, 1)
				} else {
					f.weights.Set(oi, ti, obs.Covariates[term])
				}
			}
		}
		b.factors = append(b.factors, f)
	}
	return b, nil
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
