package directory

import "time"

// Resolution statuses. A negative answer (not_found, ambiguous) is a
// successful call; error means the source could not be queried at all.
const (
	StatusMatched   = "matched"
	StatusAmbiguous = "ambiguous"
	StatusNotFound  = "not_found"
	StatusError     = "error"
)

// Candidate is one parsed listing row, scored against the query. The score
// is comparable only within a single resolution call.
type Candidate struct {
	URL    string   `json:"url"`
	Name   string   `json:"name"`
	Rating *float64 `json:"rating,omitempty"`
	Score  float64  `json:"score"`
}

// Resolution is the terminal result of one resolve call. Constructed fresh
// per query and never persisted; the resolver holds no cache.
type Resolution struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Best       *Candidate  `json:"best,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Confidence float64     `json:"confidence"`
	Method     string      `json:"method"`
	Strategy   string      `json:"strategy,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	ResolvedAt time.Time   `json:"resolved_at"`
}

// Summary statuses: changed signals layout drift (the parser is stale and
// needs maintenance), distinct from a transient network error.
const (
	SummaryOK      = "ok"
	SummaryChanged = "changed"
	SummaryError   = "error"
)

// Summary holds supplementary fields scraped from a resolved detail page.
type Summary struct {
	Status         string   `json:"status"`
	Rating         *float64 `json:"rating,omitempty"`
	ReviewCount    *int     `json:"review_count,omitempty"`
	DinnerPrice    string   `json:"dinner_price,omitempty"`
	LunchPrice     string   `json:"lunch_price,omitempty"`
	LastReviewDate string   `json:"last_review_date,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}
