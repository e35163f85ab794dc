package predict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalModelYAML = `
family: gaussian
residual_variance: 2.5
coefficients:
  - { name: "(Intercept)", estimate: 1.0 }
  - { name: "x", estimate: -0.5 }
vcov:
  - [0.2, 0.0]
  - [0.0, 0.1]
groups:
  - name: site
    terms: ["(Intercept)"]
    vcov_shared:
      - [0.3]
    levels:
      - { level: "s1", mode: [0.4] }
      - { level: "s2", mode: [-0.4] }
`

func TestLoadModelSummary_Minimal(t *testing.T) {
	path := writeTemp(t, "model.yaml", minimalModelYAML)
	m, err := LoadModelSummary(path)
	require.NoError(t, err)

	assert.Equal(t, FamilyGaussian, m.Family)
	assert.Equal(t, LinkDefault, m.Link)
	assert.Equal(t, 2.5, m.ResidualVariance)
	require.Len(t, m.Coefs, 2)
	assert.Equal(t, "x", m.Coefs[1].Name)
	require.Len(t, m.Groups, 1)
	assert.Equal(t, []string{"s1", "s2"}, m.Groups[0].Levels)
	require.Len(t, m.Groups[0].CondVCov, 1) // shared
}

func TestLoadModelSummary_PerLevelVCov(t *testing.T) {
	path := writeTemp(t, "model.yaml", `
family: binomial
link: probit
coefficients:
  - { name: "(Intercept)", estimate: 0.0 }
vcov:
  - [0.1]
groups:
  - name: site
    terms: ["(Intercept)"]
    levels:
      - { level: "s1", mode: [0.4], vcov: [[0.3]] }
      - { level: "s2", mode: [-0.4], vcov: [[0.6]] }
`)
	m, err := LoadModelSummary(path)
	require.NoError(t, err)
	assert.Equal(t, LinkProbit, m.Link)
	require.Len(t, m.Groups[0].CondVCov, 2)
	assert.Equal(t, 0.6, m.Groups[0].CondVCov[1][0][0])
}

func TestLoadModelSummary_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errSub string
	}{
		{"mixed vcov forms", `
family: gaussian
coefficients: [{ name: "(Intercept)", estimate: 0 }]
vcov: [[1]]
groups:
  - name: site
    terms: ["(Intercept)"]
    vcov_shared: [[1]]
    levels:
      - { level: "s1", mode: [0], vcov: [[1]] }
`, "both vcov_shared and per-level"},
		{"missing per-level vcov", `
family: gaussian
coefficients: [{ name: "(Intercept)", estimate: 0 }]
vcov: [[1]]
groups:
  - name: site
    terms: ["(Intercept)"]
    levels:
      - { level: "s1", mode: [0], vcov: [[1]] }
      - { level: "s2", mode: [0] }
`, "missing vcov"},
		{"no vcov at all", `
family: gaussian
coefficients: [{ name: "(Intercept)", estimate: 0 }]
vcov: [[1]]
groups:
  - name: site
    terms: ["(Intercept)"]
    levels:
      - { level: "s1", mode: [0] }
`, "no conditional covariance"},
		{"invalid summary", `
family: weibull
coefficients: [{ name: "(Intercept)", estimate: 0 }]
vcov: [[1]]
`, "unknown family"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "model.yaml", tt.yaml)
			_, err := LoadModelSummary(path)
			assert.ErrorContains(t, err, tt.errSub)
		})
	}
}

func TestLoadModelSummary_MissingFile(t *testing.T) {
	_, err := LoadModelSummary(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "reading model summary")
}
