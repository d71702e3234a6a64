package analyzer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the terminal state of an analysis. A closed set: anything
// that is not StatusFailed terminated successfully, including the
// full-parameter-set fallback.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusFailed {
		return "failed"
	}
	return "success"
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "success" or "failed".
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "success":
		*s = StatusSuccess
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("analyzer: unknown status %q", v)
	}
	return nil
}

// Result is the externally visible outcome of one analysis. It is
// assembled once when the search terminates and never mutated.
type Result struct {
	OriginalURL    string            `json:"original_url"`
	MinimalURL     string            `json:"minimal_url"`
	RequiredParams []string          `json:"required_params"`
	AllParams      map[string]string `json:"all_params,omitempty"`
	Status         Status            `json:"status"`
	Similarity     float64           `json:"similarity"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
	ElapsedMS      int64             `json:"elapsed_ms"`
}

// Verdict is the outcome of evaluating one candidate URL against the
// reference signal. Produced once per candidate and consumed
// immediately by the search loop.
type Verdict struct {
	URL        string
	Valid      bool
	StatusCode int // 0 = no response received
	Similarity float64
	Err        string // render failure detail, empty otherwise
	Elapsed    time.Duration
}
