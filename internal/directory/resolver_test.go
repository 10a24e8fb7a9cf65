package directory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// fakeFetcher serves canned pages keyed by the exact sk query parameter.
type fakeFetcher struct {
	pages    map[string][]byte
	fail     map[string]error
	err      error
	requests []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	f.requests = append(f.requests, u)
	if f.err != nil {
		return nil, f.err
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	sk := parsed.Query().Get("sk")
	if e, ok := f.fail[sk]; ok {
		return nil, e
	}
	if page, ok := f.pages[sk]; ok {
		return page, nil
	}
	return []byte("<html><body></body></html>"), nil
}

func listingHTML(rows ...string) []byte {
	return []byte("<html><body>" + strings.Join(rows, "") + "</body></html>")
}

func listingRow(name, href, rating string) string {
	r := ""
	if rating != "" {
		r = `<span class="list-rst__rating-val">` + rating + `</span>`
	}
	return `<div class="list-rst"><a class="list-rst__rst-name-target" href="` + href + `">` + name + `</a>` + r + `</div>`
}

func newTestResolver(f pageFetcher) *Resolver {
	return NewResolver("https://tabelog.example", 0, 1000, zerolog.Nop(), WithFetcher(f))
}

func TestResolveMatchedOnCleanWinner(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"すし匠": listingHTML(
			listingRow("すし匠", "https://tabelog.example/rst/1", "3.92"),
			listingRow("回転寿司 ともえ", "https://tabelog.example/rst/2", "3.10"),
		),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "")
	assert.Equal(t, StatusMatched, res.Status)
	assert.NotNil(t, res.Best)
	assert.Equal(t, "https://tabelog.example/rst/1", res.Best.URL)
	assert.GreaterOrEqual(t, res.Confidence, 0.7)
	assert.Equal(t, "without_area_hint", res.Strategy)
	assert.NotEmpty(t, res.ID)
}

func TestResolveAmbiguousNeverFabricatesWinner(t *testing.T) {
	// Two candidates with identical names and ratings: tied scores, low
	// margin, confidence below threshold.
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"焼肉多幸": listingHTML(
			listingRow("焼肉ホルモン", "https://tabelog.example/rst/1", "3.50"),
			listingRow("焼肉ホルモン", "https://tabelog.example/rst/2", "3.50"),
		),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "焼肉多幸", "")
	assert.Equal(t, StatusAmbiguous, res.Status)
	assert.Nil(t, res.Best)
	assert.LessOrEqual(t, len(res.Candidates), 3)
	assert.Less(t, res.Confidence, 0.7)
}

func TestResolveDegenerateResponseIsCountedNotDiscarded(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"すし匠": listingHTML(
			listingRow("すし匠", "https://tabelog.example/rst/1", "3.90"),
			listingRow("すし匠", "https://tabelog.example/rst/2", "3.90"),
		),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "")
	// Still scored: identical perfect-match names just produce a tie.
	assert.NotEqual(t, StatusError, res.Status)
	assert.NotEmpty(t, res.Candidates)
	assert.Equal(t, int64(1), r.DegenerateResponses())
}

func TestResolveRetriesWithoutAreaHint(t *testing.T) {
	// The area-hinted query hits a page of unrelated names; dropping the
	// hint finds the real listing. The retry's candidate set is adopted.
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"すし匠 新宿": listingHTML(
			listingRow("無関係な店A", "https://tabelog.example/rst/8", ""),
			listingRow("無関係な店B", "https://tabelog.example/rst/9", ""),
		),
		"すし匠": listingHTML(
			listingRow("すし匠", "https://tabelog.example/rst/1", "3.92"),
		),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "新宿")
	assert.Equal(t, StatusMatched, res.Status)
	assert.Equal(t, "without_area_hint", res.Strategy)
	assert.Equal(t, "https://tabelog.example/rst/1", res.Best.URL)
	assert.Len(t, fetcher.requests, 2)
}

func TestResolveStopsAtFirstConfidentStrategy(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"すし匠 新宿": listingHTML(
			listingRow("すし匠", "https://tabelog.example/rst/1", "3.92"),
		),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "新宿")
	assert.Equal(t, StatusMatched, res.Status)
	assert.Equal(t, "with_area_hint", res.Strategy)
	assert.Len(t, fetcher.requests, 1)
}

func TestResolveNotFoundOnEmptyListing(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "存在しない店", "")
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Empty(t, res.Candidates)
}

func TestResolveEmptyRetryAfterFailedStrategyIsNotFound(t *testing.T) {
	// The area-hinted fetch dies on the wire but the hint-dropped retry
	// reaches the source and finds nothing: that is a real negative answer,
	// not an error.
	fetcher := &fakeFetcher{fail: map[string]error{
		"すし匠 新宿": fmt.Errorf("connection reset"),
	}}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "新宿")
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Empty(t, res.Reason)
	assert.Len(t, fetcher.requests, 2)
}

func TestResolveNetworkFailureIsBoundedError(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("connect: %s", strings.Repeat("x", 400))}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "")
	assert.Equal(t, StatusError, res.Status)
	assert.LessOrEqual(t, len(res.Reason), 200)
}

func TestResolveMultibyteFailureReasonStaysValidUTF8(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("接続失敗: %s", strings.Repeat("あ", 100))}
	r := newTestResolver(fetcher)

	res := r.Resolve(context.Background(), "すし匠", "")
	assert.Equal(t, StatusError, res.Status)
	assert.LessOrEqual(t, len(res.Reason), 200)
	assert.True(t, utf8.ValidString(res.Reason))
}

func TestResolveEmptyNameRejected(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})
	res := r.Resolve(context.Background(), "  ", "")
	assert.Equal(t, StatusError, res.Status)
}

func TestResolveNationWideQueryString(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := newTestResolver(fetcher)
	r.Resolve(context.Background(), "すし匠", "")

	assert.Len(t, fetcher.requests, 1)
	u := fetcher.requests[0]
	assert.True(t, strings.HasPrefix(u, "https://tabelog.example/rst/rstsearch/"))
	assert.Contains(t, u, "sk="+url.QueryEscape("すし匠"))
}
