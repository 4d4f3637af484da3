package tsvdb

import (
	"math"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Scorer blends an edit-distance similarity with Jaro-Winkler. It is safe
// for concurrent use.
type Scorer struct {
	edit   strutil.StringMetric
	prefix strutil.StringMetric
}

// NewScorer creates a Scorer. Inputs are normalized before comparison, so
// the metrics run case-sensitively.
func NewScorer() *Scorer {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = true

	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = true

	return &Scorer{edit: lev, prefix: jw}
}

var defaultScorer = NewScorer()

// Similarity scores target against query with the default Scorer.
func Similarity(query, target string) float64 {
	return defaultScorer.Score(query, target)
}

// Score returns 0.5*(1 - levenshtein/maxLen) + 0.5*jaroWinkler of the
// lowercased, trimmed inputs. The result is in [0, 1] and two empty inputs
// score 1.
func (s *Scorer) Score(query, target string) float64 {
	q := normalizeForScoring(query)
	t := normalizeForScoring(target)
	if q == "" && t == "" {
		return 1
	}
	if q == t {
		return 1
	}

	editSim := s.edit.Compare(q, t)
	prefixSim := s.prefix.Compare(q, t)
	return clampUnit(0.5*editSim + 0.5*prefixSim)
}

func normalizeForScoring(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
