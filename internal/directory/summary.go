package directory

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector fallback chains for the detail page. Ordered newest-markup-first;
// the site reshuffles class names every few months.
var (
	summaryRatingSelectors = []string{
		"span.rdheader-rating__score-val-dtl",
		".c-rating__val",
		"[itemprop=ratingValue]",
	}
	summaryCountSelectors = []string{
		".rdheader-rating__review-target .num",
		"em.num",
		"[itemprop=reviewCount]",
	}
	summaryDinnerSelectors = []string{
		".rdheader-budget__icon--dinner .c-rating-v3__val a",
		".rdheader-budget__icon--dinner .c-rating__val",
	}
	summaryLunchSelectors = []string{
		".rdheader-budget__icon--lunch .c-rating-v3__val a",
		".rdheader-budget__icon--lunch .c-rating__val",
	}
	summaryReviewDateSelectors = []string{
		".rvw-item__date",
		".rvw-item time",
	}
)

// FetchSummary loads a resolved detail page and extracts supplementary
// fields. When every content-indicating field is absent the page layout has
// drifted: that is SummaryChanged (alert the parser's owner), not a
// transient error.
func (r *Resolver) FetchSummary(ctx context.Context, pageURL string) Summary {
	html, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return Summary{Status: SummaryError, Reason: boundReason(err)}
	}
	return parseSummary(html)
}

func parseSummary(html []byte) Summary {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Summary{Status: SummaryError, Reason: boundReason(err)}
	}

	var s Summary
	if text, ok := firstText(doc, summaryRatingSelectors); ok {
		if v, ok := parseRatingText(text); ok {
			s.Rating = &v
		}
	}
	if text, ok := firstText(doc, summaryCountSelectors); ok {
		if v, ok := parseCountText(text); ok {
			s.ReviewCount = &v
		}
	}
	if text, ok := firstText(doc, summaryDinnerSelectors); ok {
		s.DinnerPrice = text
	}
	if text, ok := firstText(doc, summaryLunchSelectors); ok {
		s.LunchPrice = text
	}
	if text, ok := firstText(doc, summaryReviewDateSelectors); ok {
		s.LastReviewDate = text
	}

	if s.Rating == nil && s.ReviewCount == nil && s.DinnerPrice == "" && s.LunchPrice == "" && s.LastReviewDate == "" {
		s.Status = SummaryChanged
		s.Reason = "no recognizable content fields; selectors likely stale"
		return s
	}
	s.Status = SummaryOK
	return s
}

func firstText(doc *goquery.Document, selectors []string) (string, bool) {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text, true
		}
	}
	return "", false
}
