package predict

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Family identifies the model family the summary was fit under.
type Family string

const (
	FamilyGaussian Family = "gaussian"
	FamilyBinomial Family = "binomial"
	FamilyPoisson  Family = "poisson"
)

// Link identifies the link function mapping the linear predictor to the
// response mean. LinkDefault resolves to the family's canonical link.
type Link string

const (
	LinkDefault  Link = ""
	LinkIdentity Link = "identity"
	LinkLogit    Link = "logit"
	LinkLog      Link = "log"
	LinkProbit   Link = "probit"
	LinkCloglog  Link = "cloglog"
)

// ValidFamilies is the set of recognized family names.
var ValidFamilies = map[Family]bool{FamilyGaussian: true, FamilyBinomial: true, FamilyPoisson: true}

// ValidLinks is the set of recognized link names.
var ValidLinks = map[Link]bool{
	LinkIdentity: true, LinkLogit: true, LinkLog: true, LinkProbit: true, LinkCloglog: true,
}

// CanonicalLink returns the family's canonical link function.
func (f Family) CanonicalLink() Link {
	switch f {
	case FamilyBinomial:
		return LinkLogit
	case FamilyPoisson:
		return LinkLog
	default:
		return LinkIdentity
	}
}

// resolveLink normalizes a possibly-empty link against the family.
func resolveLink(f Family, l Link) (Link, error) {
	if l == LinkDefault {
		return f.CanonicalLink(), nil
	}
	if !ValidLinks[l] {
		return "", fmt.Errorf("unknown link %q", l)
	}
	return l, nil
}

// InvLink applies the inverse link function. Every supported inverse link is
// monotonic increasing, which is what lets interval quantiles be computed on
// the link scale and transformed afterwards.
func (l Link) InvLink(x float64) float64 {
	switch l {
	case LinkIdentity:
		return x
	case LinkLogit:
		return 1.0 / (1.0 + math.Exp(-x))
	case LinkLog:
		return math.Exp(x)
	case LinkProbit:
		return distuv.UnitNormal.CDF(x)
	case LinkCloglog:
		return 1.0 - math.Exp(-math.Exp(x))
	default:
		return x
	}
}
