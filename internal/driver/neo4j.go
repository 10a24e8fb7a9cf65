package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
)

// EmbeddingDimensions is the width of vectors produced by the default
// embedding model (text-embedding-3-small). The vector index is created for
// this width; switching models requires rebuilding the index.
const EmbeddingDimensions = 1536

type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
	logger zerolog.Logger
}

func NewNeo4jDriver(uri, username, password string, logger zerolog.Logger) (*Neo4jDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "driver").Logger()
	logger.Info().Str("uri", uri).Msg("connected to neo4j")
	return &Neo4jDriver{Driver: d, logger: logger}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE CONSTRAINT restaurant_id IF NOT EXISTS FOR (r:Restaurant) REQUIRE r.restaurant_id IS UNIQUE",
		"CREATE INDEX restaurant_ward IF NOT EXISTS FOR (r:Restaurant) ON (r.ward)",
		"CREATE INDEX restaurant_name IF NOT EXISTS FOR (r:Restaurant) ON (r.name)",
		fmt.Sprintf(`CREATE VECTOR INDEX restaurant_embedding IF NOT EXISTS
			FOR (r:Restaurant) ON (r.embedding)
			OPTIONS {indexConfig: {
				`+"`vector.dimensions`"+`: %d,
				`+"`vector.similarity_function`"+`: 'cosine'
			}}`, EmbeddingDimensions),
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist under a different definition.
			d.logger.Warn().Err(err).Msg("failed to create index")
		}
	}

	return nil
}
