package storage

import (
	"database/sql"
	"fmt"
	"time"

	"ctxpipe/internal/pipeline"
)

// ReportStore records pipeline run reports.
type ReportStore struct {
	db *DB
}

// NewReportStore creates a ReportStore.
func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

// RunRecord is one persisted stage report.
type RunRecord struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	Stage           string    `json:"stage"`
	Changed         bool      `json:"changed"`
	MessagesRemoved int       `json:"messages_removed"`
	TokensBefore    int       `json:"tokens_before"`
	TokensAfter     int       `json:"tokens_after"`
	Replacements    int       `json:"replacements"`
	CreatedAt       time.Time `json:"created_at"`
}

// Record stores one row per stage of a pipeline run.
func (s *ReportStore) Record(result *pipeline.Result) error {
	now := time.Now().Unix()
	return s.db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO transform_runs
				(run_id, stage, changed, messages_removed, tokens_before, tokens_after, replacements, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range result.Reports {
			if _, err := stmt.Exec(
				result.RunID, r.Stage, boolToInt(r.Changed),
				r.MessagesRemoved, r.TokensBefore, r.TokensAfter, r.Replacements, now,
			); err != nil {
				return fmt.Errorf("insert report: %w", err)
			}
		}
		return nil
	})
}

// Recent returns the latest limit stage records, newest first.
func (s *ReportStore) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, stage, changed, messages_removed, tokens_before, tokens_after, replacements, created_at
		FROM transform_runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	records := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		var changed int
		var createdAt int64
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Stage, &changed,
			&rec.MessagesRemoved, &rec.TokensBefore, &rec.TokensAfter, &rec.Replacements, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Changed = changed != 0
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
