package predict

import (
	"fmt"
)

// InterceptTerm is the reserved name for the model intercept, both as a
// fixed-effect coefficient and as a random-effect term. Design rows carry an
// implicit value of 1 for it; every other name must match a covariate column.
const InterceptTerm = "(Intercept)"

// Coefficient is one fixed-effect term: its design-column name and estimate.
type Coefficient struct {
	Name     string
	Estimate float64
}

// RanefGroup describes one grouping factor of the fitted model.
type RanefGroup struct {
	Name      string
	Terms     []string      // random-effect terms: InterceptTerm and/or covariate names
	Levels    []string      // known levels from the training data
	CondModes [][]float64   // conditional mode per level: len(Levels) rows of len(Terms)
	CondVCov  [][][]float64 // conditional covariance: len 1 = shared, else one per level
}

// condVCovFor returns the conditional covariance for the level at index i.
func (g *RanefGroup) condVCovFor(i int) [][]float64 {
	if len(g.CondVCov) == 1 {
		return g.CondVCov[0]
	}
	return g.CondVCov[i]
}

// levelIndex returns the position of level within g.Levels, or -1 if unknown.
func (g *RanefGroup) levelIndex(level string) int {
	for i, l := range g.Levels {
		if l == level {
			return i
		}
	}
	return -1
}

// ModelSummary carries the fitted-model statistics the engine consumes. It is
// produced by an external fitting library, supplied once per call, and never
// mutated by the engine.
type ModelSummary struct {
	Coefs  []Coefficient // fixed-effect estimates, in design-column order
	VCov   [][]float64   // P x P fixed-effect covariance, symmetric PSD
	Groups []RanefGroup

	// ResidualVariance is the fitted residual variance. Only meaningful for
	// the Gaussian family; ignored otherwise.
	ResidualVariance float64

	Family Family
	Link   Link // zero value selects the family's canonical link
}

// group returns the grouping factor with the given name, or nil.
func (m *ModelSummary) group(name string) *RanefGroup {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i]
		}
	}
	return nil
}

// Validate checks the structural coherence of the summary: matrix shapes,
// level/mode alignment, and family/link membership. Positive semi-definiteness
// is checked later, when the sampler factorizes each covariance matrix.
func (m *ModelSummary) Validate() error {
	p := len(m.Coefs)
	if p == 0 {
		return fmt.Errorf("model has no fixed-effect coefficients")
	}
	seen := make(map[string]bool, p)
	for _, c := range m.Coefs {
		if c.Name == "" {
			return fmt.Errorf("fixed-effect coefficient with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate fixed-effect coefficient %q", c.Name)
		}
		seen[c.Name] = true
	}
	if len(m.VCov) != p {
		return fmt.Errorf("fixed-effect vcov has %d rows, want %d", len(m.VCov), p)
	}
	for i, row := range m.VCov {
		if len(row) != p {
			return fmt.Errorf("fixed-effect vcov row %d has %d columns, want %d", i, len(row), p)
		}
	}
	if !ValidFamilies[m.Family] {
		return fmt.Errorf("unknown family %q", m.Family)
	}
	if m.Link != LinkDefault && !ValidLinks[m.Link] {
		return fmt.Errorf("unknown link %q", m.Link)
	}
	if m.ResidualVariance < 0 {
		return fmt.Errorf("residual variance must be non-negative, got %f", m.ResidualVariance)
	}

	groupSeen := make(map[string]bool, len(m.Groups))
	for gi := range m.Groups {
		g := &m.Groups[gi]
		if g.Name == "" {
			return fmt.Errorf("grouping factor %d has empty name", gi)
		}
		if groupSeen[g.Name] {
			return fmt.Errorf("duplicate grouping factor %q", g.Name)
		}
		groupSeen[g.Name] = true
		t := len(g.Terms)
		if t == 0 {
			return fmt.Errorf("grouping factor %q has no random-effect terms", g.Name)
		}
		if len(g.Levels) == 0 {
			return fmt.Errorf("grouping factor %q has no known levels", g.Name)
		}
		if len(g.CondModes) != len(g.Levels) {
			return fmt.Errorf("grouping factor %q: %d conditional modes for %d levels",
				g.Name, len(g.CondModes), len(g.Levels))
		}
		for li, mode := range g.CondModes {
			if len(mode) != t {
				return fmt.Errorf("grouping factor %q level %q: conditional mode has %d terms, want %d",
					g.Name, g.Levels[li], len(mode), t)
			}
		}
		if len(g.CondVCov) != 1 && len(g.CondVCov) != len(g.Levels) {
			return fmt.Errorf("grouping factor %q: %d conditional covariances for %d levels (want 1 shared or one per level)",
				g.Name, len(g.CondVCov), len(g.Levels))
		}
		for vi, vc := range g.CondVCov {
			if len(vc) != t {
				return fmt.Errorf("grouping factor %q: conditional covariance %d is %dx?, want %dx%d",
					g.Name, vi, len(vc), t, t)
			}
			for _, row := range vc {
				if len(row) != t {
					return fmt.Errorf("grouping factor %q: conditional covariance %d has a row of %d columns, want %d",
						g.Name, vi, len(row), t)
				}
			}
		}
	}
	return nil
}
