// Package repository contains data access logic separated from HTTP handlers.
// This file persists study schedule rows.  Each storage key (one per topic)
// owns an ordered list of rows; saving a key replaces its whole list, which
// mirrors how the schedule is edited as a single document.
package repository

import (
	"context"      // context carries deadlines and cancellation to DB operations
	"database/sql" // sql provides the connection pool and transactions
	"errors"       // errors is used to match sql.ErrNoRows
	"fmt"          // fmt wraps errors with the failing step
	"strings"      // strings joins and splits review tags

	"github.com/iliyamo/study-ui/internal/model"
)

// StudyRowRepo stores study rows in MySQL.  A row in study_lists marks a key
// as saved, so an emptied list is distinguishable from one never written.
type StudyRowRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewStudyRowRepo constructs a StudyRowRepo with the provided DB handle.
func NewStudyRowRepo(db *sql.DB) *StudyRowRepo {
	return &StudyRowRepo{db: db}
}

// Load returns the rows saved under key in display order.  found is false
// when the key was never saved.
func (r *StudyRowRepo) Load(ctx context.Context, key string) ([]model.StudyRow, bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM study_lists WHERE storage_key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	const q = `SELECT id, title, solved_on, revisit, topic, level, reviews, link
	           FROM study_rows WHERE storage_key = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, key)
	if err != nil {
		return nil, true, err
	}
	defer rows.Close()

	out := []model.StudyRow{}
	for rows.Next() {
		var s model.StudyRow
		var reviews string
		if err := rows.Scan(&s.ID, &s.Title, &s.Date, &s.Revisit, &s.Topic, &s.Level, &reviews, &s.Link); err != nil {
			return nil, true, err
		}
		s.Reviews = decodeReviews(reviews)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, true, err
	}
	return out, true, nil
}

// Save replaces every row under key with rows, preserving their order.  The
// replacement runs in one transaction.
func (r *StudyRowRepo) Save(ctx context.Context, key string, rows []model.StudyRow) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO study_lists (storage_key) VALUES (?)
		 ON DUPLICATE KEY UPDATE updated_at = CURRENT_TIMESTAMP`, key); err != nil {
		return fmt.Errorf("upsert list: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM study_rows WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO study_rows (storage_key, position, id, title, solved_on, revisit, topic, level, reviews, link)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, s := range rows {
		if _, err = stmt.ExecContext(ctx, key, i, s.ID, s.Title, s.Date, s.Revisit, s.Topic, s.Level, encodeReviews(s.Reviews), s.Link); err != nil {
			if strings.Contains(err.Error(), "1062") { // duplicate (storage_key, id)
				return fmt.Errorf("insert row %s: %w", s.ID, ErrConflict)
			}
			return fmt.Errorf("insert row %s: %w", s.ID, err)
		}
	}
	return nil
}

// reviews are stored space separated, the same form the CSV export uses.
func encodeReviews(tags []string) string { return strings.Join(tags, " ") }

func decodeReviews(s string) []string {
	out := strings.Fields(s)
	if out == nil {
		out = []string{}
	}
	return out
}
