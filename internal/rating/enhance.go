package rating

import (
	"context"
	"sync"
)

// EnhanceBatch validates a list of restaurant names against the provider
// with a bounded fan-out. Each name is processed independently: one
// failure or unreliable match never aborts the batch; results come back in
// input order with per-item status.
func (c *YelpClient) EnhanceBatch(ctx context.Context, names []string, location string, fanout int) []BusinessMatch {
	if fanout <= 0 {
		fanout = 4
	}

	results := make([]BusinessMatch, len(names))
	sem := make(chan struct{}, fanout)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.ValidateMatch(ctx, name, location)
		}(i, name)
	}
	wg.Wait()

	return results
}
