// Package sqlite persists the favorite-session set in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	session_id TEXT PRIMARY KEY,
	position   INTEGER NOT NULL
);
`

// FavoriteRepository implements persistence.FavoriteStore on SQLite.
type FavoriteRepository struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string) (*FavoriteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &FavoriteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *FavoriteRepository) Close() error {
	return r.db.Close()
}

// Load returns the favorite ids in their stored order.
func (r *FavoriteRepository) Load(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id FROM favorites ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: read favorites: %w", err)
	}
	return ids, nil
}

// Save rewrites the whole set transactionally.
func (r *FavoriteRepository) Save(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: clear favorites: %w", err)
	}
	for position, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (session_id, position) VALUES (?, ?)`,
			id, position,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert favorite %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}
