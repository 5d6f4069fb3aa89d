package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertLog stores an analysis and returns its id. Re-submitting the same
// log with the same analysis returns the existing id instead of inserting
// a duplicate row.
func InsertLog(db *sql.DB, summary, analysis string) (int64, error) {
	var existing int64
	err := db.QueryRow(
		`SELECT id FROM logs WHERE summary = ? AND analysis = ? LIMIT 1`,
		summary, analysis,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check existing log: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO logs (created_at, summary, analysis) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), summary, analysis,
	)
	if err != nil {
		return 0, fmt.Errorf("insert log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("log id: %w", err)
	}
	return id, nil
}

// InsertFeedback links a Yes/No choice plus optional comment to a log
// record. Repeated submissions are kept; reads pick the latest.
func InsertFeedback(db *sql.DB, logID int64, choice, comment string) (int64, error) {
	if err := ValidateFeedbackChoice(choice); err != nil {
		return 0, err
	}

	res, err := db.Exec(
		`INSERT INTO feedback (log_id, feedback_choice, feedback_text, created_at) VALUES (?, ?, ?, ?)`,
		logID, choice, comment, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("feedback id: %w", err)
	}
	return id, nil
}

const recordColumns = `
	l.id,
	l.created_at,
	l.summary,
	l.analysis,
	COALESCE((
		SELECT f.feedback_choice FROM feedback f
		WHERE f.log_id = l.id
		ORDER BY f.created_at DESC, f.id DESC LIMIT 1
	), '') AS feedback_choice,
	COALESCE((
		SELECT f.feedback_text FROM feedback f
		WHERE f.log_id = l.id
		ORDER BY f.created_at DESC, f.id DESC LIMIT 1
	), '') AS feedback_text`

// FetchLogs returns the most recent analyses, newest first, each joined
// with its latest feedback.
func FetchLogs(db *sql.DB, limit int) ([]LogRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(
		`SELECT `+recordColumns+` FROM logs l ORDER BY l.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FetchLogByID returns one record, or nil when the id is unknown.
func FetchLogByID(db *sql.DB, id int64) (*LogRecord, error) {
	rows, err := db.Query(
		`SELECT `+recordColumns+` FROM logs l WHERE l.id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecord(rows *sql.Rows) (LogRecord, error) {
	var rec LogRecord
	var created string
	if err := rows.Scan(&rec.ID, &created, &rec.Summary, &rec.Analysis, &rec.FeedbackChoice, &rec.FeedbackText); err != nil {
		return LogRecord{}, err
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

// Repository adapts the free functions to the pipeline's Store interface
// and gives the server and MCP layers one handle to pass around.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertLog(summary, analysis string) (int64, error) {
	return InsertLog(r.db, summary, analysis)
}

func (r *Repository) InsertFeedback(logID int64, choice, comment string) (int64, error) {
	return InsertFeedback(r.db, logID, choice, comment)
}

func (r *Repository) FetchLogs(limit int) ([]LogRecord, error) {
	return FetchLogs(r.db, limit)
}

func (r *Repository) FetchLogByID(id int64) (*LogRecord, error) {
	return FetchLogByID(r.db, id)
}
