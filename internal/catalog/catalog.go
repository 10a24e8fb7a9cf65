package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/umamilabs/gurume/internal/driver"
	"github.com/umamilabs/gurume/internal/llm"
)

// Catalog runs hybrid filter + vector-similarity queries over the persisted
// restaurant store. Read-mostly; writes happen only through the ingestion
// path (Upsert/SetEmbedding).
type Catalog struct {
	Driver   driver.GraphDriver
	Embedder llm.EmbedderClient
	logger   zerolog.Logger
}

func New(d driver.GraphDriver, embedder llm.EmbedderClient, logger zerolog.Logger) *Catalog {
	return &Catalog{
		Driver:   d,
		Embedder: embedder,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// DefaultLookupMinScore is the acceptance gate for name-indexed lookups.
const DefaultLookupMinScore = 0.75

// Search embeds the query, applies the hard filters server-side, keeps the
// top candidates by similarity, then re-ranks them by blended goodness and
// truncates to k. Failures degrade to a status:error response; they are
// never raised past this boundary.
func (c *Catalog) Search(ctx context.Context, queryText string, filters Filters, k int) *SearchResponse {
	if k <= 0 {
		k = 10
	}

	qvec, err := c.Embedder.Embed(ctx, queryText)
	if err != nil {
		c.logger.Error().Err(err).Msg("query embedding failed")
		return &SearchResponse{Status: "error", Reason: truncateReason(err)}
	}

	params := map[string]interface{}{
		"ward":          nullable(filters.Ward),
		"max_dinner":    nullable(filters.MaxDinnerBudget),
		"smoking":       nullable(filters.Smoking),
		"with_children": nullable(filters.WithChildren),
		"category_hint": nullable(filters.CategoryHint),
		"qvec":          qvec,
		"pool":          coarsePoolSize,
	}

	result, err := c.Driver.ExecuteQuery(ctx, FilteredSimilarityQuery, params)
	if err != nil {
		c.logger.Error().Err(err).Msg("catalog query failed")
		return &SearchResponse{Status: "error", Reason: truncateReason(err)}
	}

	explain := buildExplain(filters)
	results := make([]SearchResult, 0, len(result.Records))
	for _, rec := range result.Records {
		rating := recFloatPtr(rec, "star_rating")
		count := recIntPtr(rec, "review_count")
		semantic := recFloat(rec, "score")
		results = append(results, SearchResult{
			RestaurantID:  recString(rec, "restaurant_id"),
			Name:          recString(rec, "name"),
			PageURL:       recString(rec, "page_url"),
			StarRating:    rating,
			ReviewCount:   count,
			Categories:    recStrings(rec, "categories"),
			ScoreSemantic: semantic,
			ScoreGoodness: goodness(semantic, rating, count),
			Explain:       explain,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ScoreGoodness > results[j].ScoreGoodness
	})
	if len(results) > k {
		results = results[:k]
	}

	return &SearchResponse{Status: "ok", Results: results}
}

// LookupByName finds the single nearest catalog record by name similarity
// only. A similarity below minScore returns (nil, nil): "no confident match"
// is a valid outcome, distinct from the store being down.
func (c *Catalog) LookupByName(ctx context.Context, name string, minScore float64) (*Match, error) {
	if name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if minScore <= 0 {
		minScore = DefaultLookupMinScore
	}

	qvec, err := c.Embedder.Embed(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to embed name: %w", err)
	}

	result, err := c.Driver.ExecuteQuery(ctx, NearestByNameQuery, map[string]interface{}{"qvec": qvec})
	if err != nil {
		return nil, fmt.Errorf("lookup query failed: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	rec := result.Records[0]
	score := recFloat(rec, "score")
	if score < minScore {
		return nil, nil
	}

	return &Match{
		RestaurantID:  recString(rec, "restaurant_id"),
		Name:          recString(rec, "name"),
		PageURL:       recString(rec, "page_url"),
		StarRating:    recFloatPtr(rec, "star_rating"),
		ReviewCount:   recIntPtr(rec, "review_count"),
		Categories:    recStrings(rec, "categories"),
		Address:       recString(rec, "address"),
		Ward:          recString(rec, "ward"),
		AreaHint:      recString(rec, "area_hint"),
		ScoreSemantic: score,
	}, nil
}

// Upsert writes one record; the MERGE on restaurant_id makes re-ingestion of
// the same source URL idempotent.
func (c *Catalog) Upsert(ctx context.Context, r Record) error {
	params := map[string]interface{}{
		"restaurant_id":     r.RestaurantID,
		"name":              r.Name,
		"page_url":          r.PageURL,
		"star_rating":       nullable(r.StarRating),
		"review_count":      nullable(r.ReviewCount),
		"categories":        r.Categories,
		"address":           r.Address,
		"ward":              r.Ward,
		"area_hint":         r.AreaHint,
		"transportation":    r.Transportation,
		"budget_dinner_min": nullable(r.BudgetDinner.Min),
		"budget_dinner_max": nullable(r.BudgetDinner.Max),
		"budget_lunch_min":  nullable(r.BudgetLunch.Min),
		"budget_lunch_max":  nullable(r.BudgetLunch.Max),
		"seats":             nullable(r.Seats),
		"smoking":           r.Smoking,
		"with_children":     nullable(r.WithChildren),
		"private_room":      nullable(r.PrivateRoom),
		"parking":           nullable(r.Parking),
		"opening_day":       r.OpeningDay,
		"retrieval_text_ja": r.RetrievalText,
	}
	if _, err := c.Driver.ExecuteQuery(ctx, UpsertRestaurantQuery, params); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", r.RestaurantID, err)
	}
	return nil
}

// MissingEmbeddings lists records awaiting the embedding pipeline, bounded
// to limit rows.
func (c *Catalog) MissingEmbeddings(ctx context.Context, limit int) (map[string]string, error) {
	if limit <= 0 {
		limit = 1000
	}
	result, err := c.Driver.ExecuteQuery(ctx, MissingEmbeddingsQuery, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded records: %w", err)
	}
	out := make(map[string]string, len(result.Records))
	for _, rec := range result.Records {
		out[recString(rec, "restaurant_id")] = recString(rec, "name")
	}
	return out, nil
}

// SetEmbedding persists a computed vector for one record.
func (c *Catalog) SetEmbedding(ctx context.Context, restaurantID string, vec []float32) error {
	_, err := c.Driver.ExecuteQuery(ctx, SetEmbeddingQuery, map[string]interface{}{
		"restaurant_id": restaurantID,
		"embedding":     vec,
	})
	if err != nil {
		return fmt.Errorf("failed to set embedding for %s: %w", restaurantID, err)
	}
	return nil
}

// nullable maps a nil pointer to a Cypher NULL parameter.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func recString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func recFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func recFloatPtr(rec *neo4j.Record, key string) *float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return &n
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}

func recIntPtr(rec *neo4j.Record, key string) *int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	}
	return nil
}

func recStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
