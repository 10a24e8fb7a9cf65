package catalog

const (
	UpsertRestaurantQuery = `
		MERGE (r:Restaurant {restaurant_id: $restaurant_id})
		SET r.name = $name,
			r.page_url = $page_url,
			r.star_rating = $star_rating,
			r.review_count = $review_count,
			r.categories = $categories,
			r.address = $address,
			r.ward = $ward,
			r.area_hint = $area_hint,
			r.transportation = $transportation,
			r.budget_dinner_min = $budget_dinner_min,
			r.budget_dinner_max = $budget_dinner_max,
			r.budget_lunch_min = $budget_lunch_min,
			r.budget_lunch_max = $budget_lunch_max,
			r.seats = $seats,
			r.smoking = $smoking,
			r.with_children = $with_children,
			r.private_room = $private_room,
			r.parking = $parking,
			r.opening_day = $opening_day,
			r.retrieval_text_ja = $retrieval_text_ja,
			r.updated_at = datetime()
		RETURN r.restaurant_id AS restaurant_id
	`

	SetEmbeddingQuery = `
		MATCH (r:Restaurant {restaurant_id: $restaurant_id})
		SET r.embedding = $embedding,
			r.embedded_at = datetime()
		RETURN r.restaurant_id AS restaurant_id
	`

	MissingEmbeddingsQuery = `
		MATCH (r:Restaurant)
		WHERE r.embedding IS NULL AND r.name IS NOT NULL AND r.name <> ''
		RETURN r.restaurant_id AS restaurant_id, r.name AS name
		LIMIT $limit
	`

	// Hard filters run server-side; the vector leg only sees embedded
	// records. The coarse pool is capped before goodness re-ranking.
	FilteredSimilarityQuery = `
		MATCH (r:Restaurant)
		WHERE ($ward IS NULL OR r.ward = $ward)
		  AND ($max_dinner IS NULL OR r.budget_dinner_max IS NULL OR r.budget_dinner_max <= $max_dinner)
		  AND ($smoking IS NULL OR r.smoking = $smoking)
		  AND ($with_children IS NULL OR r.with_children = $with_children)
		  AND ($category_hint IS NULL OR any(c IN r.categories WHERE toLower(c) CONTAINS toLower($category_hint)))
		  AND r.embedding IS NOT NULL
		WITH r, vector.similarity.cosine(r.embedding, $qvec) AS score
		RETURN r.restaurant_id AS restaurant_id, r.name AS name, r.page_url AS page_url,
			   r.star_rating AS star_rating, r.review_count AS review_count,
			   r.categories AS categories, score
		ORDER BY score DESC
		LIMIT $pool
	`

	NearestByNameQuery = `
		MATCH (r:Restaurant)
		WHERE r.embedding IS NOT NULL
		WITH r, vector.similarity.cosine(r.embedding, $qvec) AS score
		RETURN r.restaurant_id AS restaurant_id, r.name AS name, r.page_url AS page_url,
			   r.star_rating AS star_rating, r.review_count AS review_count,
			   r.categories AS categories, r.address AS address, r.ward AS ward,
			   r.area_hint AS area_hint, score
		ORDER BY score DESC
		LIMIT 1
	`
)
