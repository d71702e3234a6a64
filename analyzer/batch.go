package analyzer

import (
	"context"
	"fmt"
	"sync"
)

// AnalyzeBatch analyzes URLs in parallel, bounded by ConcurrencyLimit.
// Each analysis owns its own render session; one member's failure
// never affects its siblings. The returned slice preserves input
// order.
func (s *Service) AnalyzeBatch(ctx context.Context, urls []string, opts ...RunOption) []*Result {
	results := make([]*Result, len(urls))
	sem := make(chan struct{}, s.cfg.ConcurrencyLimit)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = s.failed(u, nil, fmt.Sprintf("analysis cancelled: %v", ctx.Err()))
				return
			}
			defer func() { <-sem }()
			results[i] = s.FindMinimalURL(ctx, u, opts...)
		}(i, u)
	}

	wg.Wait()
	return results
}
