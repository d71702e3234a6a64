// Package observability records analysis outcomes in an SQLite event
// log. Writes are best-effort: a failing audit store logs a warning
// via slog but never blocks or fails an analysis.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/urlmin/idgen"
)

// AnalysisEvent is one completed analysis, flattened for the log.
type AnalysisEvent struct {
	OriginalURL   string
	MinimalURL    string
	Status        string
	Similarity    float64
	ParamCount    int
	RequiredCount int
	ElapsedMS     int64
	Error         string
}

// EventLogger writes analysis events and manages retention cleanup.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures an EventLogger.
type Option func(*EventLogger)

// WithIDGenerator sets a custom ID generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *EventLogger) { l.newID = gen }
}

// NewEventLogger creates a logger backed by the given database. The
// schema must already be applied (see Schema).
func NewEventLogger(db *sql.DB, opts ...Option) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("ana_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// LogAnalysis records one analysis outcome. Errors are logged, not
// propagated.
func (l *EventLogger) LogAnalysis(ctx context.Context, ev AnalysisEvent) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO analysis_events (
			event_id, original_url, minimal_url, status, similarity,
			param_count, required_count, elapsed_ms, error, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		l.newID(), ev.OriginalURL, ev.MinimalURL, ev.Status, ev.Similarity,
		ev.ParamCount, ev.RequiredCount, ev.ElapsedMS, ev.Error, time.Now().Unix())
	if err != nil {
		slog.Warn("observability: analysis event log failed",
			"error", err, "url", ev.OriginalURL)
	}
}

// Cleanup deletes events older than the retention window. Zero days
// means no cleanup.
func Cleanup(ctx context.Context, db *sql.DB, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().Unix() - int64(retentionDays)*86400
	if _, err := db.ExecContext(ctx,
		`DELETE FROM analysis_events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("observability: cleanup: %w", err)
	}
	return nil
}
