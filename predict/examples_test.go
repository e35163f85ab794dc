package predict

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExampleSleepstudy runs the shipped example end to end: load the model
// summary and scenario, simulate, and sanity-check the table shape.
func TestExampleSleepstudy(t *testing.T) {
	model, err := LoadModelSummary(filepath.Join("..", "examples", "sleepstudy.yaml"))
	require.NoError(t, err, "failed to load sleepstudy.yaml")

	assert.Equal(t, FamilyGaussian, model.Family)
	require.Len(t, model.Groups, 1)
	assert.Len(t, model.Groups[0].Levels, 18)

	scenario, err := LoadScenarioCSV(filepath.Join("..", "examples", "scenario.csv"), model)
	require.NoError(t, err, "failed to load scenario.csv")
	require.Len(t, scenario, 6)

	opts := seeded(DefaultOptions(), 42)
	opts.NSamples = 2000
	res, err := Intervals(model, scenario, opts)
	require.NoError(t, err)
	require.Len(t, res, 6)

	for i, row := range res {
		assert.LessOrEqual(t, row.Lwr, row.Fit, "row %d", i)
		assert.LessOrEqual(t, row.Fit, row.Upr, "row %d", i)
	}

	// Subject 308 at day 0: fit near 251.4 + 2.3 with generous tolerance for
	// simulation noise.
	assert.InDelta(t, 253.7, res[0].Fit, 5.0)
	// Day 9 for the same subject should predict a slower reaction than day 0.
	assert.Greater(t, res[2].Fit, res[0].Fit)
}

func TestExampleSleepstudy_LocateMedianSubject(t *testing.T) {
	model, err := LoadModelSummary(filepath.Join("..", "examples", "sleepstudy.yaml"))
	require.NoError(t, err)

	level, err := LevelAtQuantile(model, "subject", 0.5, "")
	require.NoError(t, err)
	assert.Contains(t, model.Groups[0].Levels, level)

	// Extremes bracket the known slowest and fastest subjects.
	slowest, err := LevelAtQuantile(model, "subject", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "337", slowest)
	fastest, err := LevelAtQuantile(model, "subject", 0, "")
	require.NoError(t, err)
	assert.Equal(t, "309", fastest)
}
