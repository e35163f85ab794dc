package predict

import (
	"fmt"
	"strings"
)

// DegenerateCovarianceError reports a covariance matrix that is not positive
// semi-definite within numerical tolerance. The call aborts with no partial
// results.
type DegenerateCovarianceError struct {
	Source   string  // which matrix: "fixed effects" or "group <g> level <l>"
	Dim      int     // matrix dimension
	MinEigen float64 // most negative eigenvalue found
}

func (e *DegenerateCovarianceError) Error() string {
	return fmt.Sprintf("covariance matrix for %s (%dx%d) is not positive semi-definite: min eigenvalue %g",
		e.Source, e.Dim, e.Dim, e.MinEigen)
}

// UnknownLevelError reports a grouping-factor value present in the scenario
// but absent from the model's known levels, under the fail policy.
type UnknownLevelError struct {
	Factor string
	Level  string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("grouping factor %q has no known level %q", e.Factor, e.Level)
}

// DimensionMismatchError reports scenario columns that do not align with the
// model's design: covariates or grouping factors the model needs but the
// scenario lacks, and scenario columns nothing in the model consumes.
type DimensionMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *DimensionMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unused columns: %s", strings.Join(e.Extra, ", ")))
	}
	return "scenario does not match model design: " + strings.Join(parts, "; ")
}
