package predict

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// psdTol is the relative tolerance below which a negative eigenvalue marks a
// covariance matrix as degenerate rather than merely rounded.
const psdTol = 1e-8

// mvnSampler draws from a multivariate normal whose covariance may be exactly
// singular (including all-zero, where every draw collapses to the mean). A
// Cholesky-based sampler cannot do that, so the transform is built from a
// symmetric eigendecomposition: draw = mean + V·sqrt(Λ)·z with z ~ N(0, I).
type mvnSampler struct {
	mean      []float64
	transform *mat.Dense // n x n; nil when the covariance is all-zero
}

// newMVNSampler factorizes cov and returns a sampler. source names the matrix
// in error messages ("fixed effects", "group g level l").
func newMVNSampler(mean []float64, cov [][]float64, source string) (*mvnSampler, error) {
	n := len(mean)
	sym := mat.NewSymDense(n, nil)
	allZero := true
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Symmetrize: callers hand us row-major slices that may carry
			// asymmetric rounding from upstream serialization.
			v := (cov[i][j] + cov[j][i]) / 2
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &DegenerateCovarianceError{Source: source, Dim: n, MinEigen: math.NaN()}
			}
			sym.SetSym(i, j, v)
			if v != 0 {
				allZero = false
			}
		}
	}
	if allZero {
		return &mvnSampler{mean: mean}, nil
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, &DegenerateCovarianceError{Source: source, Dim: n, MinEigen: math.NaN()}
	}
	vals := eig.Values(nil)
	var maxEigen float64
	minEigen := math.Inf(1)
	for _, v := range vals {
		if v > maxEigen {
			maxEigen = v
		}
		if v < minEigen {
			minEigen = v
		}
	}
	if minEigen < -psdTol*math.Max(maxEigen, 1) {
		return nil, &DegenerateCovarianceError{Source: source, Dim: n, MinEigen: minEigen}
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	// transform = V · diag(sqrt(max(λ, 0))), scaling column j of V in place.
	transform := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		s := math.Sqrt(math.Max(vals[j], 0))
		for i := 0; i < n; i++ {
			transform.Set(i, j, vecs.At(i, j)*s)
		}
	}
	return &mvnSampler{mean: mean, transform: transform}, nil
}

// draw writes one sample into dst (len n). The z vector is scratch space of
// the same length, reused across calls to avoid per-draw allocation.
func (s *mvnSampler) draw(rng *rand.Rand, dst, z []float64) {
	n := len(s.mean)
	if s.transform == nil {
		copy(dst, s.mean)
		return
	}
	for j := 0; j < n; j++ {
		z[j] = rng.NormFloat64()
	}
	for i := 0; i < n; i++ {
		acc := s.mean[i]
		for j := 0; j < n; j++ {
			acc += s.transform.At(i, j) * z[j]
		}
		dst[i] = acc
	}
}

// sampleEnsemble holds one call's joint draws: S fixed-effect vectors and, per
// grouping factor, S random-effect vectors per known level. It is created
// fresh for each call and discarded after aggregation; observations within the
// call share it, which is what correlates predictions referencing the same
// group level.
type sampleEnsemble struct {
	s     int
	fixef *mat.Dense              // S x P
	ranef map[string][]*mat.Dense // factor name -> per level index -> S x T
}

// drawEnsemble produces the full ensemble for a call. Each grouping factor's
// levels are drawn in declaration order from the factor's own RNG stream, so
// the result is deterministic given the model and seed.
func drawEnsemble(model *ModelSummary, s int, rng *partitionedRNG) (*sampleEnsemble, error) {
	p := len(model.Coefs)
	means := make([]float64, p)
	for i, c := range model.Coefs {
		means[i] = c.Estimate
	}
	fixSampler, err := newMVNSampler(means, model.VCov, "fixed effects")
	if err != nil {
		return nil, err
	}

	ens := &sampleEnsemble{
		s:     s,
		fixef: mat.NewDense(s, p, nil),
		ranef: make(map[string][]*mat.Dense, len(model.Groups)),
	}
	fixRNG := rng.forSubsystem(subsystemFixef)
	z := make([]float64, p)
	for i := 0; i < s; i++ {
		fixSampler.draw(fixRNG, ens.fixef.RawRowView(i), z)
	}

	for gi := range model.Groups {
		g := &model.Groups[gi]
		t := len(g.Terms)
		groupRNG := rng.forSubsystem(subsystemRanef(g.Name))
		draws := make([]*mat.Dense, len(g.Levels))
		zt := make([]float64, t)
		for li, level := range g.Levels {
			sampler, err := newMVNSampler(g.CondModes[li], g.condVCovFor(li), "group "+g.Name+" level "+level)
			if err != nil {
				return nil, err
			}
			m := mat.NewDense(s, t, nil)
			for i := 0; i < s; i++ {
				sampler.draw(groupRNG, m.RawRowView(i), zt)
			}
			draws[li] = m
		}
		ens.ranef[g.Name] = draws
	}
	return ens, nil
}

// ensembleBytes estimates the ensemble footprint for the memory ceiling:
// 8·S·P for fixed draws plus 8·S·Σ(levels·terms) for random draws.
func ensembleBytes(model *ModelSummary, s int) int64 {
	cells := int64(len(model.Coefs))
	for i := range model.Groups {
		g := &model.Groups[i]
		cells += int64(len(g.Levels)) * int64(len(g.Terms))
	}
	return 8 * int64(s) * cells
}
