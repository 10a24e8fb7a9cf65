package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// pageFetcher loads one URL and returns the raw HTML. Split out so resolver
// tests can substitute canned pages.
type pageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// httpFetcher wraps the outbound client with the policies the scraped source
// demands: browser-like headers, a request rate cap, a circuit breaker, and
// a mandatory timeout. The source actively resists automated access;
// anything less gets served cached or empty pages.
type httpFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

func newHTTPFetcher(timeout time.Duration, requestsPerSec float64, logger zerolog.Logger) *httpFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	settings := gobreaker.Settings{
		Name:    "directory",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &httpFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger.With().Str("component", "directory_fetch").Logger(),
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return f.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		setBrowserHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	})
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")
}
