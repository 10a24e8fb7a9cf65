package directory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Resolver maps a free-text restaurant name to a listing on the external
// directory. It holds no cache and no per-query state; concurrent resolves
// are independent.
type Resolver struct {
	baseURL string
	fetcher pageFetcher
	logger  zerolog.Logger

	// degenerateResponses counts listing pages where every candidate had
	// the same name, an observability signal rather than a correctness branch.
	degenerateResponses atomic.Int64
}

type Option func(*Resolver)

// WithFetcher substitutes the page fetcher; used by tests.
func WithFetcher(f pageFetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

func NewResolver(baseURL string, timeout time.Duration, requestsPerSec float64, logger zerolog.Logger, opts ...Option) *Resolver {
	logger = logger.With().Str("component", "directory").Logger()
	r := &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: newHTTPFetcher(timeout, requestsPerSec, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// searchStrategy is one entry of the ordered fallback table. Strategies are
// evaluated in order until confidence crosses the threshold or the table is
// exhausted; adding a tier means adding a row, not a branch.
type searchStrategy struct {
	name        string
	useAreaHint bool
}

var strategies = []searchStrategy{
	{name: "with_area_hint", useAreaHint: true},
	{name: "without_area_hint", useAreaHint: false},
}

// Resolve runs the per-call state machine: search, score, calibrate
// confidence, optionally retry with the area hint dropped, then decide.
// Network and parse failures surface as status error with a bounded reason;
// they never propagate.
func (r *Resolver) Resolve(ctx context.Context, name, areaHint string) Resolution {
	res := Resolution{
		ID:         uuid.New().String(),
		Method:     "listing_search",
		ResolvedAt: time.Now().UTC(),
	}
	if strings.TrimSpace(name) == "" {
		res.Status = StatusError
		res.Reason = "empty restaurant name"
		return res
	}

	var (
		best         []Candidate
		bestConf     float64 = -1
		bestStrategy string
		lastErr      error
		reached      bool
	)

	for _, strat := range strategies {
		if strat.useAreaHint && areaHint == "" {
			continue
		}
		query := name
		if strat.useAreaHint {
			query = name + " " + areaHint
		}

		cands, err := r.searchListing(ctx, query)
		if err != nil {
			// Treated like a non-200: empty candidates, remembered only in
			// case no strategy reaches the source at all.
			lastErr = err
			r.logger.Warn().Err(err).Str("strategy", strat.name).Msg("listing search failed")
			cands = nil
		} else {
			reached = true
		}
		if allSameName(cands) {
			n := r.degenerateResponses.Add(1)
			r.logger.Warn().Str("name", name).Int64("total", n).
				Msg("degenerate listing response: identical candidate names")
			// The best of a bad set is still informative; scoring proceeds.
		}

		ranked := rankCandidates(cands, name)
		conf := confidence(ranked)
		if conf > bestConf {
			best = ranked
			bestConf = conf
			bestStrategy = strat.name
		}
		if conf >= matchThreshold {
			break
		}
	}

	res.Strategy = bestStrategy
	if len(best) == 0 {
		// An empty listing from a successful fetch is a real negative
		// answer, even if an earlier strategy failed on the wire.
		if lastErr != nil && !reached {
			res.Status = StatusError
			res.Reason = boundReason(lastErr)
			return res
		}
		res.Status = StatusNotFound
		return res
	}

	res.Confidence = bestConf
	if bestConf >= matchThreshold {
		res.Status = StatusMatched
		res.Best = &best[0]
		res.Candidates = best
		return res
	}

	// Never fabricate a winner below threshold.
	res.Status = StatusAmbiguous
	top := best
	if len(top) > 3 {
		top = top[:3]
	}
	res.Candidates = top
	return res
}

// DegenerateResponses exposes the degenerate-source counter for quality
// monitoring.
func (r *Resolver) DegenerateResponses() int64 {
	return r.degenerateResponses.Load()
}

// searchListing issues a nation-wide listing query (the area hint travels in
// the keyword, never in an area-hardcoded path).
func (r *Resolver) searchListing(ctx context.Context, query string) ([]Candidate, error) {
	u := fmt.Sprintf("%s/rst/rstsearch/?vs=1&sk=%s&sw=%s",
		r.baseURL, url.QueryEscape(query), url.QueryEscape(query))
	html, err := r.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	cands, err := parseListing(html)
	if err != nil {
		r.logger.Warn().Err(err).Msg("listing parse failed")
		return nil, nil
	}
	return cands, nil
}

// boundReason cuts on a rune boundary so multibyte text never splits.
func boundReason(err error) string {
	const maxReason = 200
	s := err.Error()
	if len(s) <= maxReason {
		return s
	}
	cut := maxReason
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
