package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/catalog"
	"github.com/umamilabs/gurume/internal/directory"
	"github.com/umamilabs/gurume/internal/rating"
)

// Recommender is the facade over the three legs of the system: the curated
// catalog, the adversarial external directory, and the cross-source rating
// providers. Handlers and CLIs talk to this type only.
type Recommender struct {
	Catalog  *catalog.Catalog
	Resolver *directory.Resolver
	Yelp     *rating.YelpClient
	Places   *rating.PlacesClient

	EnhanceFanout int

	logger zerolog.Logger
}

func NewRecommender(c *catalog.Catalog, r *directory.Resolver, y *rating.YelpClient, p *rating.PlacesClient, fanout int, logger zerolog.Logger) *Recommender {
	if fanout <= 0 {
		fanout = 4
	}
	return &Recommender{
		Catalog:       c,
		Resolver:      r,
		Yelp:          y,
		Places:        p,
		EnhanceFanout: fanout,
		logger:        logger.With().Str("component", "recommender").Logger(),
	}
}

// BuildIndices prepares store constraints and the vector index.
func (r *Recommender) BuildIndices(ctx context.Context) error {
	return r.Catalog.Driver.BuildIndices(ctx)
}

// SearchCatalog runs the filtered semantic search with goodness re-ranking.
func (r *Recommender) SearchCatalog(ctx context.Context, query string, filters catalog.Filters, k int) *catalog.SearchResponse {
	return r.Catalog.Search(ctx, query, filters, k)
}

// LookupCatalogByName returns the nearest catalog record by name similarity,
// or nil when no record clears the gate.
func (r *Recommender) LookupCatalogByName(ctx context.Context, name string, minScore float64) (*catalog.Match, error) {
	return r.Catalog.LookupByName(ctx, name, minScore)
}

// ResolveDirectory resolves a restaurant name against the external directory.
func (r *Recommender) ResolveDirectory(ctx context.Context, name, areaHint string) directory.Resolution {
	return r.Resolver.Resolve(ctx, name, areaHint)
}

// FetchDirectorySummary pulls the live rating block from a directory detail
// page.
func (r *Recommender) FetchDirectorySummary(ctx context.Context, pageURL string) directory.Summary {
	return r.Resolver.FetchSummary(ctx, pageURL)
}

// ValidateYelpMatch checks whether the provider's best hit is really the
// queried establishment before trusting its numbers.
func (r *Recommender) ValidateYelpMatch(ctx context.Context, name, location string) rating.BusinessMatch {
	return r.Yelp.ValidateMatch(ctx, name, location)
}

// StandardizeScore fuses a provider triple into one comparable figure.
func (r *Recommender) StandardizeScore(t rating.Triple) *float64 {
	return rating.Standardize(t)
}

// EnhanceBatch validates many names with bounded fan-out.
func (r *Recommender) EnhanceBatch(ctx context.Context, names []string, location string) []rating.BusinessMatch {
	return r.Yelp.EnhanceBatch(ctx, names, location, r.EnhanceFanout)
}

// SearchPlaces runs the Google Places text-search leg.
func (r *Recommender) SearchPlaces(ctx context.Context, query, location string, radiusMeters int) ([]rating.Place, error) {
	return r.Places.TextSearch(ctx, query, location, radiusMeters)
}

// EnrichResult collects the per-leg outcomes for one establishment plus the
// fused standardized score. Legs fail independently; an empty leg simply
// contributes nothing to the fusion.
type EnrichResult struct {
	Name         string               `json:"name"`
	Catalog      *catalog.Match       `json:"catalog,omitempty"`
	Directory    directory.Resolution `json:"directory"`
	Yelp         rating.BusinessMatch `json:"yelp"`
	Standardized *float64             `json:"standardized_score"`
}

// Enrich runs the full per-restaurant flow: catalog lookup, directory
// resolution and provider validation in parallel, then standardization over
// whatever trustworthy numbers came back. The catalog carries the directory
// source's ingested rating and count; the provider leg contributes only when
// its match was validated.
func (r *Recommender) Enrich(ctx context.Context, name, areaHint string) EnrichResult {
	out := EnrichResult{Name: name}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		match, err := r.Catalog.LookupByName(ctx, name, 0)
		if err != nil {
			r.logger.Warn().Err(err).Str("name", name).Msg("catalog leg failed")
			return
		}
		out.Catalog = match
	}()
	go func() {
		defer wg.Done()
		out.Directory = r.Resolver.Resolve(ctx, name, areaHint)
	}()
	go func() {
		defer wg.Done()
		out.Yelp = r.Yelp.ValidateMatch(ctx, name, "")
	}()
	wg.Wait()

	var triple rating.Triple
	if out.Catalog != nil && out.Catalog.StarRating != nil && out.Catalog.ReviewCount != nil {
		triple.Tabelog = rating.Sample{Score: out.Catalog.StarRating, Count: *out.Catalog.ReviewCount}
	}
	if out.Yelp.Status == rating.MatchOK && out.Yelp.Rating != nil && out.Yelp.ReviewCount != nil {
		triple.Yelp = rating.Sample{Score: out.Yelp.Rating, Count: *out.Yelp.ReviewCount}
	}
	out.Standardized = rating.Standardize(triple)

	return out
}
