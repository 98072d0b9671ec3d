// Package analysis turns a sample collection into risk statistics:
// exact binomial probabilities, parameter distributions, and per-year trend
// regression.
package analysis

import (
	"time"

	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/internal/thresholds"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Kind selects which adverse-condition predicate a computation counts.
type Kind string

const (
	KindHot      Kind = "hot"
	KindCold     Kind = "cold"
	KindWindy    Kind = "windy"
	KindWet      Kind = "wet"
	KindAny      Kind = "any"
	KindMultiple Kind = "multiple"
)

// Kinds lists every condition kind in presentation order.
var Kinds = []Kind{KindHot, KindCold, KindWindy, KindWet, KindAny, KindMultiple}

// DefaultConfidenceLevel is the interval level used when callers pass 0.
const DefaultConfidenceLevel = 0.95

// Matches reports whether the flags satisfy the kind's predicate.
func (k Kind) Matches(f thresholds.Flags) bool {
	switch k {
	case KindHot:
		return f.VeryHot
	case KindCold:
		return f.VeryCold
	case KindWindy:
		return f.VeryWindy
	case KindWet:
		return f.VeryWet
	case KindAny:
		return f.Any()
	case KindMultiple:
		return f.Count() >= 2
	}
	return false
}

// Valid reports whether k is a known condition kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ProbabilityResult carries the point estimate and exact interval for one
// condition kind.
type ProbabilityResult struct {
	Kind            Kind      `json:"condition_type"`
	Probability     float64   `json:"probability"`
	CILower         float64   `json:"ci_lower"`
	CIUpper         float64   `json:"ci_upper"`
	ConfidenceLevel float64   `json:"confidence_level"`
	TotalSamples    int       `json:"total_samples"`
	PositiveSamples int       `json:"positive_samples"`
	CoverageYears   int       `json:"coverage_years"`
	CoverageOK      bool      `json:"coverage_adequate"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// CIWidth returns the width of the confidence interval.
func (r *ProbabilityResult) CIWidth() float64 {
	return r.CIUpper - r.CILower
}

// ClopperPearson computes the exact binomial confidence interval for k
// successes in n trials at the given level.
func ClopperPearson(k, n int, level float64) (float64, float64, error) {
	if k < 0 || k > n {
		return 0, 0, riskerr.New(riskerr.KindValidation, "successes %d must be between 0 and trials %d", k, n)
	}
	if level <= 0 || level >= 1 {
		return 0, 0, riskerr.New(riskerr.KindValidation, "confidence level %v must be in (0, 1)", level)
	}

	alpha := 1 - level

	switch {
	case n == 0:
		return 0.0, 1.0, nil
	case k == 0:
		return 0.0, invBetaCDF(1-alpha/2, 1, float64(n)), nil
	case k == n:
		return invBetaCDF(alpha/2, float64(n), 1), 1.0, nil
	}

	lower := invBetaCDF(alpha/2, float64(k), float64(n-k+1))
	upper := invBetaCDF(1-alpha/2, float64(k+1), float64(n-k))
	return lower, upper, nil
}

// Probability computes the exceedance probability for one condition kind over
// the collection, with its Clopper-Pearson interval.
func Probability(col *samples.Collection, kind Kind, settings config.Settings) (*ProbabilityResult, error) {
	if !kind.Valid() {
		return nil, riskerr.New(riskerr.KindValidation, "unknown condition kind %q", kind)
	}
	if len(col.Samples) == 0 {
		return nil, riskerr.New(riskerr.KindValidation, "cannot compute probability over empty sample set")
	}

	n := len(col.Samples)
	k := 0
	for i := range col.Samples {
		if kind.Matches(thresholds.Flag(&col.Samples[i], settings)) {
			k++
		}
	}

	lower, upper, err := ClopperPearson(k, n, DefaultConfidenceLevel)
	if err != nil {
		return nil, err
	}

	return &ProbabilityResult{
		Kind:            kind,
		Probability:     float64(k) / float64(n),
		CILower:         lower,
		CIUpper:         upper,
		ConfidenceLevel: DefaultConfidenceLevel,
		TotalSamples:    n,
		PositiveSamples: k,
		CoverageYears:   col.CoverageYears(),
		CoverageOK:      col.CoverageAdequate,
		AnalyzedAt:      time.Now().UTC(),
	}, nil
}

// Probabilities computes results for every kind in Kinds.
func Probabilities(col *samples.Collection, settings config.Settings) (map[Kind]*ProbabilityResult, error) {
	out := make(map[Kind]*ProbabilityResult, len(Kinds))
	for _, kind := range Kinds {
		r, err := Probability(col, kind, settings)
		if err != nil {
			return nil, err
		}
		out[kind] = r
	}
	return out, nil
}
