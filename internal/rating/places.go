package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Place is one Google Places text-search hit, filtered to likely
// restaurants.
type Place struct {
	Name           string   `json:"name"`
	Rating         *float64 `json:"rating"`
	ReviewsCount   *int     `json:"reviews_count"`
	PriceLevel     *int     `json:"price_level"`
	Types          []string `json:"types"`
	PhotoReference string   `json:"photo_reference,omitempty"`
	PlaceURL       string   `json:"place_url,omitempty"`
}

// PlacesClient wraps the Google Places text-search and details endpoints.
type PlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewPlacesClient(apiKey, baseURL string, logger zerolog.Logger) *PlacesClient {
	return &PlacesClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With().Str("component", "places").Logger(),
	}
}

type placesItem struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type placesSearchResponse struct {
	Results []placesItem `json:"results"`
}

type placesDetailsResponse struct {
	Result struct {
		PriceLevel       *int   `json:"price_level"`
		UserRatingsTotal *int   `json:"user_ratings_total"`
		URL              string `json:"url"`
	} `json:"result"`
}

// TextSearch runs a flexible text query, optionally biased by a "lat,lng"
// location and radius, keeping only results typed as restaurants or food.
// Missing price levels and review counts are backfilled from the details
// endpoint; a per-place enrichment failure skips that place only.
func (c *PlacesClient) TextSearch(ctx context.Context, query, location string, radiusMeters int) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if location != "" {
		params.Set("location", location)
		if radiusMeters > 0 {
			params.Set("radius", strconv.Itoa(radiusMeters))
		}
	}

	var decoded placesSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/textsearch/json?"+params.Encode(), &decoded); err != nil {
		return nil, fmt.Errorf("places text search failed: %w", err)
	}

	var places []Place
	var placeIDs []string
	for _, item := range decoded.Results {
		if !isEatery(item.Types) {
			continue
		}
		p := Place{
			Name:         item.Name,
			Rating:       item.Rating,
			ReviewsCount: item.UserRatingsTotal,
			PriceLevel:   item.PriceLevel,
			Types:        item.Types,
		}
		if len(item.Photos) > 0 {
			p.PhotoReference = item.Photos[0].PhotoReference
		}
		if item.PlaceID != "" {
			p.PlaceURL = "https://www.google.com/maps/search/?api=1&query_place_id=" + item.PlaceID
		}
		places = append(places, p)
		placeIDs = append(placeIDs, item.PlaceID)
	}

	c.enrich(ctx, places, placeIDs)
	return places, nil
}

// enrich backfills missing price levels and review counts; the details
// endpoint is more reliable than text search for both.
func (c *PlacesClient) enrich(ctx context.Context, places []Place, placeIDs []string) {
	for i := range places {
		needPrice := places[i].PriceLevel == nil
		needReviews := places[i].ReviewsCount == nil
		if (!needPrice && !needReviews) || placeIDs[i] == "" {
			continue
		}

		fields := "url"
		if needPrice {
			fields += ",price_level"
		}
		if needReviews {
			fields += ",user_ratings_total"
		}
		params := url.Values{}
		params.Set("place_id", placeIDs[i])
		params.Set("fields", fields)
		params.Set("key", c.apiKey)

		var decoded placesDetailsResponse
		if err := c.getJSON(ctx, c.baseURL+"/details/json?"+params.Encode(), &decoded); err != nil {
			c.logger.Warn().Err(err).Str("name", places[i].Name).Msg("details enrichment failed")
			continue
		}
		if needPrice && decoded.Result.PriceLevel != nil {
			places[i].PriceLevel = decoded.Result.PriceLevel
		}
		if needReviews && decoded.Result.UserRatingsTotal != nil {
			places[i].ReviewsCount = decoded.Result.UserRatingsTotal
		}
		if decoded.Result.URL != "" {
			places[i].PlaceURL = decoded.Result.URL
		}
	}
}

func (c *PlacesClient) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isEatery(types []string) bool {
	for _, t := range types {
		if t == "restaurant" || t == "food" {
			return true
		}
	}
	return false
}
