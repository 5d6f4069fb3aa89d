package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndFetchLog(t *testing.T) {
	db := testDB(t)

	id, err := InsertLog(db, "ERROR something broke", `{"errors": []}`)
	if err != nil {
		t.Fatalf("InsertLog failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	rec, err := FetchLogByID(db, id)
	if err != nil {
		t.Fatalf("FetchLogByID failed: %v", err)
	}
	if rec == nil {
		t.Fatal("record not found")
	}
	if rec.Summary != "ERROR something broke" {
		t.Errorf("unexpected summary: %q", rec.Summary)
	}
	if rec.Analysis != `{"errors": []}` {
		t.Errorf("unexpected analysis: %q", rec.Analysis)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
	if rec.FeedbackChoice != "" || rec.FeedbackText != "" {
		t.Error("expected empty feedback on a fresh record")
	}
}

func TestInsertLog_Dedupes(t *testing.T) {
	db := testDB(t)

	first, err := InsertLog(db, "same log", "same analysis")
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	second, err := InsertLog(db, "same log", "same analysis")
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if first != second {
		t.Errorf("expected the same id for identical content, got %d and %d", first, second)
	}

	third, err := InsertLog(db, "same log", "different analysis")
	if err != nil {
		t.Fatalf("third insert failed: %v", err)
	}
	if third == first {
		t.Error("different analysis must get its own row")
	}

	records, err := FetchLogs(db, 10)
	if err != nil {
		t.Fatalf("FetchLogs failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 rows, got %d", len(records))
	}
}

func TestFetchLogs_NewestFirst(t *testing.T) {
	db := testDB(t)

	for _, s := range []string{"first", "second", "third"} {
		if _, err := InsertLog(db, s, "analysis-"+s); err != nil {
			t.Fatalf("insert %q failed: %v", s, err)
		}
	}

	records, err := FetchLogs(db, 2)
	if err != nil {
		t.Fatalf("FetchLogs failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected limit to apply, got %d rows", len(records))
	}
	if records[0].Summary != "third" || records[1].Summary != "second" {
		t.Errorf("wrong order: %q then %q", records[0].Summary, records[1].Summary)
	}
}

func TestFeedback_LatestWins(t *testing.T) {
	db := testDB(t)

	id, err := InsertLog(db, "log", "analysis")
	if err != nil {
		t.Fatalf("InsertLog failed: %v", err)
	}

	if _, err := InsertFeedback(db, id, FeedbackNo, "not helpful"); err != nil {
		t.Fatalf("first feedback failed: %v", err)
	}
	if _, err := InsertFeedback(db, id, FeedbackYes, "actually it was right"); err != nil {
		t.Fatalf("second feedback failed: %v", err)
	}

	rec, err := FetchLogByID(db, id)
	if err != nil {
		t.Fatalf("FetchLogByID failed: %v", err)
	}
	if rec.FeedbackChoice != FeedbackYes {
		t.Errorf("expected the latest choice, got %q", rec.FeedbackChoice)
	}
	if rec.FeedbackText != "actually it was right" {
		t.Errorf("expected the latest comment, got %q", rec.FeedbackText)
	}
}

func TestInsertFeedback_RejectsInvalidChoice(t *testing.T) {
	db := testDB(t)

	id, err := InsertLog(db, "log", "analysis")
	if err != nil {
		t.Fatalf("InsertLog failed: %v", err)
	}

	for _, choice := range []string{"", "yes", "maybe", "YES"} {
		if _, err := InsertFeedback(db, id, choice, ""); err == nil {
			t.Errorf("choice %q should be rejected", choice)
		}
	}
}

func TestFetchLogByID_Missing(t *testing.T) {
	db := testDB(t)

	rec, err := FetchLogByID(db, 9999)
	if err != nil {
		t.Fatalf("FetchLogByID failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil for an unknown id, got %+v", rec)
	}
}

func TestRepository_Roundtrip(t *testing.T) {
	repo := NewRepository(testDB(t))

	id, err := repo.InsertLog("repo log", "repo analysis")
	if err != nil {
		t.Fatalf("InsertLog failed: %v", err)
	}
	if _, err := repo.InsertFeedback(id, FeedbackYes, ""); err != nil {
		t.Fatalf("InsertFeedback failed: %v", err)
	}

	records, err := repo.FetchLogs(5)
	if err != nil {
		t.Fatalf("FetchLogs failed: %v", err)
	}
	if len(records) != 1 || records[0].FeedbackChoice != FeedbackYes {
		t.Errorf("unexpected records: %+v", records)
	}
}
