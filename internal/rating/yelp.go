package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/normalize"
)

// minNameSimilarity gates acceptance of a provider result: below it, the
// returned numbers describe some other establishment.
const minNameSimilarity = 0.7

// YelpClient queries the Yelp Fusion business search API and validates that
// the returned business actually corresponds to the queried name before
// trusting its numbers.
type YelpClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewYelpClient(apiKey, baseURL string, logger zerolog.Logger) *YelpClient {
	return &YelpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With().Str("component", "yelp").Logger(),
	}
}

type yelpBusiness struct {
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"review_count"`
	URL         string   `json:"url"`
}

type yelpSearchResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
}

// ValidateMatch searches for the restaurant, limited to one result, and
// accepts its rating/count/url only when the name similarity clears the
// gate. An unreliable match nulls all three together; "unreliable" is
// distinct from "no data".
func (c *YelpClient) ValidateMatch(ctx context.Context, name, location string) BusinessMatch {
	if name == "" {
		return BusinessMatch{Status: MatchError, Reason: "empty restaurant name"}
	}

	params := url.Values{}
	params.Set("term", name)
	params.Set("categories", "restaurants")
	params.Set("limit", "1")
	if location != "" {
		params.Set("location", location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/businesses/search?"+params.Encode(), nil)
	if err != nil {
		return BusinessMatch{Status: MatchError, Name: name, Reason: boundReason(err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return BusinessMatch{Status: MatchError, Name: name, Reason: boundReason(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return BusinessMatch{
			Status: MatchError,
			Name:   name,
			Reason: fmt.Sprintf("search failed with status %d: %s", resp.StatusCode, body),
		}
	}

	var decoded yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return BusinessMatch{Status: MatchError, Name: name, Reason: boundReason(err)}
	}
	if len(decoded.Businesses) == 0 {
		c.logger.Debug().Str("name", name).Msg("no businesses found")
		return BusinessMatch{Status: MatchNotFound, Name: name}
	}

	biz := decoded.Businesses[0]
	similarity := normalize.Ratio(normalize.BusinessName(name), normalize.BusinessName(biz.Name))
	if similarity < minNameSimilarity {
		c.logger.Warn().Str("query", name).Str("returned", biz.Name).
			Float64("similarity", similarity).Msg("rejecting unreliable match")
		return BusinessMatch{
			Status:     MatchUnreliable,
			Name:       name,
			Similarity: similarity,
		}
	}

	m := BusinessMatch{
		Status:      MatchOK,
		Name:        biz.Name,
		Rating:      biz.Rating,
		ReviewCount: biz.ReviewCount,
		Similarity:  similarity,
	}
	if biz.URL != "" {
		u := biz.URL
		m.URL = &u
	}
	return m
}

// boundReason cuts on a rune boundary so multibyte text never splits.
func boundReason(err error) string {
	const maxReason = 200
	s := err.Error()
	if len(s) <= maxReason {
		return s
	}
	cut := maxReason
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
