package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umamilabs/gurume/internal/catalog"
)

type MockDriver struct {
	MockResult  neo4j.EagerResult
	Err         error
	LastQuery   string
	QueryParams map[string]interface{}
	Queries     []string
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.LastQuery = query
	m.QueryParams = params
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

type MockEmbedder struct {
	Vector []float32
	Err    error
	Texts  []string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.Texts = texts
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.Vector
	}
	return out, nil
}

func newTestLoader(d *MockDriver, e *MockEmbedder) *Loader {
	return NewLoader(catalog.New(d, e, zerolog.Nop()), zerolog.Nop())
}

const testCSV = `Page_URL,Restaurant_name,Star_rating,Number_Of_Reviewers,Categories,Address,Transportation,Budget
https://tabelog.example/a,鮨一,3.65,420,寿司,東京都新宿区1-1,新宿駅徒歩3分,"￥8,000～￥9,999"
https://tabelog.example/b,,3.20,10,ラーメン,東京都中野区2-2,中野駅徒歩1分,～￥999
https://tabelog.example/c,麺屋武一,3.55,980,ラーメン、つけ麺,東京都渋谷区3-3,渋谷駅徒歩5分,
`

func TestLoadCSVSkipsBadRows(t *testing.T) {
	d := &MockDriver{}
	loader := newTestLoader(d, &MockEmbedder{})

	n, err := loader.LoadCSV(context.Background(), strings.NewReader(testCSV))
	require.NoError(t, err)
	// the nameless row is skipped, the rest are stored
	assert.Equal(t, 2, n)
	assert.Len(t, d.Queries, 2)
	assert.Contains(t, d.LastQuery, "MERGE")
	assert.Equal(t, "麺屋武一", d.QueryParams["name"])
	assert.Equal(t, RestaurantID("https://tabelog.example/c"), d.QueryParams["restaurant_id"])
}

func TestLoadCSVUpsertFailureAborts(t *testing.T) {
	d := &MockDriver{Err: errors.New("store down")}
	loader := newTestLoader(d, &MockEmbedder{})

	n, err := loader.LoadCSV(context.Background(), strings.NewReader(testCSV))
	require.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestBackfillEmbeddings(t *testing.T) {
	d := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			{Keys: []string{"restaurant_id", "name"}, Values: []interface{}{"id-1", "鮨一"}},
			{Keys: []string{"restaurant_id", "name"}, Values: []interface{}{"id-2", "麺屋武一"}},
		}},
	}
	e := &MockEmbedder{Vector: []float32{0.1, 0.2}}
	loader := newTestLoader(d, e)

	n, err := loader.BackfillEmbeddings(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"鮨一", "麺屋武一"}, e.Texts)
	// one listing query plus one SET per record
	require.Len(t, d.Queries, 3)
	assert.Contains(t, d.Queries[1], "embedding")
}

func TestBackfillEmbeddingsNothingPending(t *testing.T) {
	d := &MockDriver{}
	e := &MockEmbedder{Vector: []float32{0.1}}
	loader := newTestLoader(d, e)

	n, err := loader.BackfillEmbeddings(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Nil(t, e.Texts)
}

func TestBackfillEmbeddingsProviderFailure(t *testing.T) {
	d := &MockDriver{
		MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
			{Keys: []string{"restaurant_id", "name"}, Values: []interface{}{"id-1", "鮨一"}},
		}},
	}
	loader := newTestLoader(d, &MockEmbedder{Err: errors.New("quota")})

	n, err := loader.BackfillEmbeddings(context.Background(), 100)
	require.Error(t, err)
	assert.Equal(t, 0, n)
}
