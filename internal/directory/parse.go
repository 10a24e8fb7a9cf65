package directory

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxListingCandidates = 10

// listingSelectors are tried in order; the site's markup drifts over time,
// so every extraction goes through a fallback chain.
var listingSelectors = []string{
	"a.list-rst__rst-name-target",
	".list-rst__rst-name a",
	".list-rst h3 a",
}

var listingRatingSelectors = []string{
	".list-rst__rating-val",
	".c-rating__val",
}

// parseListing extracts up to maxListingCandidates rows from a listing page.
// A page that parses to nothing is an empty slice, not an error.
func parseListing(html []byte) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing html: %w", err)
	}

	var cands []Candidate
	for _, sel := range listingSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			name := strings.TrimSpace(s.Text())
			href, _ := s.Attr("href")
			if name == "" || href == "" {
				return true
			}
			cands = append(cands, Candidate{
				URL:    href,
				Name:   name,
				Rating: nearbyRating(s),
			})
			return len(cands) < maxListingCandidates
		})
		if len(cands) > 0 {
			break
		}
	}
	return cands, nil
}

// nearbyRating looks for an on-page rating within the candidate's listing
// row.
func nearbyRating(s *goquery.Selection) *float64 {
	row := s.Closest(".list-rst")
	if row.Length() == 0 {
		row = s.Parent().Parent()
	}
	for _, sel := range listingRatingSelectors {
		text := strings.TrimSpace(row.Find(sel).First().Text())
		if v, ok := parseRatingText(text); ok {
			return &v
		}
	}
	return nil
}

var ratingPattern = regexp.MustCompile(`\d\.\d\d?`)

func parseRatingText(text string) (float64, bool) {
	m := ratingPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 || v > 5 {
		return 0, false
	}
	return v, true
}

var countPattern = regexp.MustCompile(`[\d,]+`)

func parseCountText(text string) (int, bool) {
	m := countPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

// allSameName reports the degenerate-source symptom: every candidate carries
// an identical name, typical of an anti-automation cached page.
func allSameName(cands []Candidate) bool {
	if len(cands) < 2 {
		return false
	}
	first := cands[0].Name
	for _, c := range cands[1:] {
		if c.Name != first {
			return false
		}
	}
	return true
}
