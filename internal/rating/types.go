package rating

// Provider tags a rating source. Each carries a fixed prior mean and sigma
// used for standardization.
type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderTabelog Provider = "tabelog"
	ProviderYelp    Provider = "yelp"
)

// Sample is one provider's (score, count) pair. A nil score is "absent",
// never imputed.
type Sample struct {
	Score *float64 `json:"score"`
	Count int      `json:"count"`
}

// Triple collects up to three provider samples for one establishment.
type Triple struct {
	Google  Sample `json:"google"`
	Tabelog Sample `json:"tabelog"`
	Yelp    Sample `json:"yelp"`
}

// Cross-source match statuses. Unreliable means the provider found
// something, but it failed the "is it the same place" check; downstream must
// never render its numbers.
const (
	MatchOK         = "matched"
	MatchUnreliable = "unreliable"
	MatchNotFound   = "not_found"
	MatchError      = "error"
)

// BusinessMatch is the tagged per-provider result of a validated lookup.
// Rating, ReviewCount and URL are set together or not at all.
type BusinessMatch struct {
	Status      string   `json:"status"`
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	URL         *string  `json:"url,omitempty"`
	Similarity  float64  `json:"similarity,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}
