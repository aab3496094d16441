package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/baking-contest/webapp/types"
)

// EntryRepository handles persistence for contest entries.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	entry.CreatedAt = time.Now()

	const query = `
		INSERT INTO entries (user_id, item_name, num_excellent, num_ok, num_bad, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.UserID,
		entry.ItemName,
		entry.NumExcellent,
		entry.NumOk,
		entry.NumBad,
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) List(ctx context.Context) ([]types.Entry, error) {
	const query = `
		SELECT id, user_id, item_name, num_excellent, num_ok, num_bad, created_at
		FROM entries
		ORDER BY id`
	return r.queryEntries(ctx, query)
}

func (r *EntryRepository) ListByUser(ctx context.Context, userID int) ([]types.Entry, error) {
	const query = `
		SELECT id, user_id, item_name, num_excellent, num_ok, num_bad, created_at
		FROM entries
		WHERE user_id = $1
		ORDER BY id`
	return r.queryEntries(ctx, query, userID)
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]types.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.Entry
	for rows.Next() {
		var entry types.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ItemName,
			&entry.NumExcellent,
			&entry.NumOk,
			&entry.NumBad,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
