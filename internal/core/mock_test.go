package core

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
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
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.Vector
	}
	return out, nil
}

// stubFetcher serves one canned listing page for the directory resolver.
type stubFetcher struct {
	page []byte
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func listingPage(rows ...string) []byte {
	html := "<html><body>"
	for _, r := range rows {
		html += r
	}
	return []byte(html + "</body></html>")
}

func listingRow(name, href, ratingText string) string {
	return fmt.Sprintf(`<div class="list-rst"><a class="list-rst__rst-name-target" href="%s">%s</a><span class="list-rst__rating-val">%s</span></div>`, href, name, ratingText)
}
