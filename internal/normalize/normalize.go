package normalize

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// branchSuffixes are location qualifiers that make two listings of the same
// restaurant diverge ("XX 本店" vs "XX"). Stripped after NFKC folding.
var branchSuffixes = []string{"本店", "別館", "西口店", "東口店"}

// bracketRunes covers the bracket variants seen in scraped listing names.
var bracketRunes = map[rune]bool{
	'（': true, '）': true, '(': true, ')': true,
	'[': true, ']': true, '【': true, '】': true,
}

// Name canonicalizes a restaurant name so that string comparisons are
// meaningful across sources: NFKC compatibility folding, removal of every
// bracket variant and all internal whitespace, then branch-suffix stripping.
// Pure and idempotent.
func Name(s string) string {
	folded := norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || bracketRunes[r] {
			continue
		}
		b.WriteString(string(r))
	}
	out := b.String()
	for _, suffix := range branchSuffixes {
		out = strings.ReplaceAll(out, suffix, "")
	}
	return out
}

// genericSuffixes are category words that carry no identity ("Sakura Cafe"
// and "Sakura" should compare as the same establishment on a review API).
var genericSuffixes = []string{
	"restaurant", "cafe", "coffee", "bar", "kitchen", "dining", "food",
	"レストラン", "カフェ", "バー", "キッチン", "ダイニング", "フード",
}

// BusinessName normalizes a name for cross-provider comparison: lowercase,
// trailing generic category words removed, punctuation stripped, whitespace
// collapsed. Looser than Name; used where the counterpart name comes from an
// API that appends category words.
func BusinessName(s string) string {
	out := strings.ToLower(norm.NFKC.String(s))
	for _, suffix := range genericSuffixes {
		if strings.HasSuffix(out, suffix) {
			out = strings.TrimSpace(strings.TrimSuffix(out, suffix))
		}
	}
	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteString(string(r))
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Ratio returns a Levenshtein similarity ratio in [0,1] between two strings.
// 1.0 means equal; empty input on either side scores 0.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(longest)
}
