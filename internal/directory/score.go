package directory

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/umamilabs/gurume/internal/normalize"
)

const (
	// Candidate score = nameWeight * similarity tier + flat rating bonus.
	nameWeight        = 0.7
	ratingBonus       = 0.3
	ratingBonusFloor  = 3.4
	confidenceCeiling = 0.95
	matchThreshold    = 0.7
)

// nameTier scores how well a candidate name matches the query, tiered from
// exact match down to no overlap. Both sides go through the same
// normalization; the tiers are checked in precedence order, not by value.
func nameTier(query, candidate string) float64 {
	nq := normalize.Name(query)
	nc := normalize.Name(candidate)
	if nq == "" || nc == "" {
		return 0
	}
	if nq == nc {
		return 1.0
	}
	if strings.Contains(nq, nc) || strings.Contains(nc, nq) {
		return 0.9
	}
	if sharedRunePrefix(nq, nc) >= 4 {
		return 0.7
	}
	if hasCommonToken(query, candidate) {
		return 0.6
	}
	if runeOverlap(nq, nc) >= 0.5 {
		return 0.3
	}
	if r := normalize.Ratio(nq, nc); r > 0.3 {
		// Partial term overlap: base 0.4 plus a bonus proportional to the
		// remaining similarity.
		return 0.4 + 0.2*r
	}
	return 0
}

// scoreCandidate combines the name-similarity tier with a flat bonus for a
// plausible on-page rating.
func scoreCandidate(c Candidate, queryName string) float64 {
	score := nameWeight * nameTier(queryName, c.Name)
	if c.Rating != nil && *c.Rating >= ratingBonusFloor {
		score += ratingBonus
	}
	return score
}

// confidence calibrates [0, 0.95] from the best score and its margin over
// the runner-up: rewards both absolute quality and a clear winner.
func confidence(scored []Candidate) float64 {
	if len(scored) == 0 {
		return 0
	}
	s1 := scored[0].Score
	s2 := 0.0
	if len(scored) > 1 {
		s2 = scored[1].Score
	}
	margin := s1 - s2
	if margin < 0 {
		margin = 0
	}
	conf := 0.5*s1 + 0.5*margin
	if conf > confidenceCeiling {
		conf = confidenceCeiling
	}
	return conf
}

// rankCandidates scores and sorts candidates best-first.
func rankCandidates(cands []Candidate, queryName string) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		out[i].Score = scoreCandidate(out[i], queryName)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func sharedRunePrefix(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

// hasCommonToken checks whitespace-delimited tokens of the raw names (after
// compatibility folding); normalization removes spaces, so tokens come from
// the originals.
func hasCommonToken(a, b string) bool {
	ta := strings.Fields(norm.NFKC.String(a))
	tb := strings.Fields(norm.NFKC.String(b))
	for _, x := range ta {
		if len([]rune(x)) < 2 {
			continue
		}
		for _, y := range tb {
			if x == y {
				return true
			}
		}
	}
	return false
}

// runeOverlap is the share of distinct runes of the shorter name that also
// appear in the other.
func runeOverlap(a, b string) float64 {
	sa := runeSet(a)
	sb := runeSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	short, long := sa, sb
	if len(sb) < len(sa) {
		short, long = sb, sa
	}
	common := 0
	for r := range short {
		if long[r] {
			common++
		}
	}
	return float64(common) / float64(len(short))
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}
