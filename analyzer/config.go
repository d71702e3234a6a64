package analyzer

import "time"

// Config configures the search engine.
type Config struct {
	// Timeout bounds each navigation. Default: 30s.
	Timeout time.Duration

	// SimilarityThreshold is the minimum content similarity for a
	// candidate to be accepted, in (0,1]. Default: 0.95.
	SimilarityThreshold float64

	// SuccessStatus is the transport status a candidate must return.
	// Default: 200.
	SuccessStatus int

	// ConcurrencyLimit bounds parallel analyses in AnalyzeBatch.
	// Default: 5. Candidate evaluation within one analysis is always
	// sequential.
	ConcurrencyLimit int

	// MaxRetries is the number of extra render attempts for a
	// candidate whose evaluation failed for render reasons (timeout,
	// no content). Similarity rejections are never retried.
	// Default: 0.
	MaxRetries int

	// MaxCombinationSize caps the size of enumerated parameter
	// subsets. The full powerset of n parameters is 2^n candidates,
	// so URLs with many parameters need a cap to bound runtime; the
	// full-set fallback still guarantees termination and a success
	// result. 0 = no cap.
	MaxCombinationSize int
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		c.SimilarityThreshold = 0.95
	}
	if c.SuccessStatus == 0 {
		c.SuccessStatus = 200
	}
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = 5
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxCombinationSize < 0 {
		c.MaxCombinationSize = 0
	}
}
