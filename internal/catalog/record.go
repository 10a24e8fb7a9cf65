package catalog

// Record is one row of the internal catalog. The id is a stable hash of the
// canonical page URL, so re-ingestion of the same listing is idempotent.
// The embedding lives only on the stored node, written by the backfill
// pipeline; records without one stay filterable but are excluded from vector
// queries.
type Record struct {
	RestaurantID   string   `json:"restaurant_id"`
	Name           string   `json:"name"`
	PageURL        string   `json:"page_url"`
	StarRating     *float64 `json:"star_rating"`
	ReviewCount    *int     `json:"review_count"`
	Categories     []string `json:"categories"`
	Address        string   `json:"address,omitempty"`
	Ward           string   `json:"ward,omitempty"`
	AreaHint       string   `json:"area_hint,omitempty"`
	Transportation string   `json:"transportation,omitempty"`
	BudgetDinner   Budget   `json:"budget_dinner"`
	BudgetLunch    Budget   `json:"budget_lunch"`
	Seats          *int     `json:"seats,omitempty"`
	Smoking        string   `json:"smoking,omitempty"`
	WithChildren   *bool    `json:"with_children,omitempty"`
	PrivateRoom    *bool    `json:"private_room,omitempty"`
	Parking        *bool    `json:"parking,omitempty"`
	OpeningDay     string   `json:"opening_day,omitempty"`
	RetrievalText  string   `json:"retrieval_text_ja,omitempty"`
}

// Budget is a min/max price band in yen; either bound may be absent.
type Budget struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Filters are the optional hard constraints of a catalog search. A nil field
// means "no constraint".
type Filters struct {
	Ward            *string `json:"ward"`
	MaxDinnerBudget *int    `json:"max_dinner_budget"`
	Smoking         *string `json:"smoking"`
	WithChildren    *bool   `json:"with_children"`
	CategoryHint    *string `json:"category_hint"`
}

// SearchResult pairs catalog fields with the two independent query-time
// scores and a human-readable explanation of the active filters.
type SearchResult struct {
	RestaurantID  string   `json:"restaurant_id"`
	Name          string   `json:"name"`
	PageURL       string   `json:"page_url"`
	StarRating    *float64 `json:"star_rating"`
	ReviewCount   *int     `json:"review_count"`
	Categories    []string `json:"categories"`
	ScoreSemantic float64  `json:"score_semantic"`
	ScoreGoodness float64  `json:"score_goodness"`
	Explain       string   `json:"explain"`
}

// SearchResponse is the status-tagged envelope of a catalog search. Failures
// degrade to status "error" with a bounded reason instead of propagating; this
// is a query-time, user-facing operation.
type SearchResponse struct {
	Status    string         `json:"status"`
	Results   []SearchResult `json:"results"`
	Reason    string         `json:"reason,omitempty"`
	Retryable bool           `json:"retryable"`
}

// Match is a confident name-indexed lookup hit: the record plus the semantic
// similarity that cleared the acceptance gate.
type Match struct {
	RestaurantID  string   `json:"restaurant_id"`
	Name          string   `json:"name"`
	PageURL       string   `json:"page_url"`
	StarRating    *float64 `json:"star_rating"`
	ReviewCount   *int     `json:"review_count"`
	Categories    []string `json:"categories"`
	Address       string   `json:"address,omitempty"`
	Ward          string   `json:"ward,omitempty"`
	AreaHint      string   `json:"area_hint,omitempty"`
	ScoreSemantic float64  `json:"score_semantic"`
}
