package observability

import (
	"context"
	"testing"
	"time"

	"github.com/hazyhaar/urlmin/dbopen"
	_ "modernc.org/sqlite"
)

func TestLogAnalysis(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	logger := NewEventLogger(db)

	logger.LogAnalysis(context.Background(), AnalysisEvent{
		OriginalURL:   "https://example.com/page?a=1&b=2",
		MinimalURL:    "https://example.com/page",
		Status:        "success",
		Similarity:    0.98,
		ParamCount:    2,
		RequiredCount: 0,
		ElapsedMS:     1250,
	})

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM analysis_events`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count: got %d, want 1", count)
	}

	var status string
	var sim float64
	if err := db.QueryRow(
		`SELECT status, similarity FROM analysis_events LIMIT 1`).Scan(&status, &sim); err != nil {
		t.Fatalf("select: %v", err)
	}
	if status != "success" || sim != 0.98 {
		t.Errorf("got status=%q sim=%v", status, sim)
	}
}

func TestCleanup(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))

	old := time.Now().Unix() - 90*86400
	if _, err := db.Exec(`
		INSERT INTO analysis_events (event_id, original_url, minimal_url, status, created_at)
		VALUES ('ana_old', 'https://a.example/', 'https://a.example/', 'success', ?),
		       ('ana_new', 'https://b.example/', 'https://b.example/', 'success', ?)`,
		old, time.Now().Unix()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Cleanup(context.Background(), db, 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM analysis_events`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("after cleanup: got %d rows, want 1", count)
	}
}
