package predict

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// modelFile is the YAML representation of a ModelSummary, the hand-off format
// from whatever fit the model. Each group carries either one vcov_shared
// matrix or a vcov per level entry.
type modelFile struct {
	Family           string       `yaml:"family"`
	Link             string       `yaml:"link"`
	ResidualVariance float64      `yaml:"residual_variance"`
	Coefficients     []coefEntry  `yaml:"coefficients"`
	VCov             [][]float64  `yaml:"vcov"`
	Groups           []groupEntry `yaml:"groups"`
}

type coefEntry struct {
	Name     string  `yaml:"name"`
	Estimate float64 `yaml:"estimate"`
}

type groupEntry struct {
	Name       string       `yaml:"name"`
	Terms      []string     `yaml:"terms"`
	Levels     []levelEntry `yaml:"levels"`
	VCovShared [][]float64  `yaml:"vcov_shared"`
}

type levelEntry struct {
	Level string      `yaml:"level"`
	Mode  []float64   `yaml:"mode"`
	VCov  [][]float64 `yaml:"vcov"`
}

// LoadModelSummary reads and validates a model-summary YAML file.
func LoadModelSummary(path string) (*ModelSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model summary: %w", err)
	}
	var mf modelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing model summary: %w", err)
	}

	m := &ModelSummary{
		Family:           Family(mf.Family),
		Link:             Link(mf.Link),
		ResidualVariance: mf.ResidualVariance,
		VCov:             mf.VCov,
	}
	for _, c := range mf.Coefficients {
		m.Coefs = append(m.Coefs, Coefficient{Name: c.Name, Estimate: c.Estimate})
	}
	for _, ge := range mf.Groups {
		g := RanefGroup{Name: ge.Name, Terms: ge.Terms}
		perLevel := false
		for _, le := range ge.Levels {
			g.Levels = append(g.Levels, le.Level)
			g.CondModes = append(g.CondModes, le.Mode)
			if le.VCov != nil {
				perLevel = true
			}
		}
		switch {
		case perLevel && ge.VCovShared != nil:
			return nil, fmt.Errorf("group %q: both vcov_shared and per-level vcov given", ge.Name)
		case perLevel:
			for _, le := range ge.Levels {
				if le.VCov == nil {
					return nil, fmt.Errorf("group %q level %q: missing vcov (other levels carry one)", ge.Name, le.Level)
				}
				g.CondVCov = append(g.CondVCov, le.VCov)
			}
		case ge.VCovShared != nil:
			g.CondVCov = [][][]float64{ge.VCovShared}
		default:
			return nil, fmt.Errorf("group %q: no conditional covariance (vcov_shared or per-level vcov)", ge.Name)
		}
		m.Groups = append(m.Groups, g)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model summary %s: %w", path, err)
	}
	return m, nil
}
