package historydb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/tuidispatch/history"
)

// Row is a persisted history entry.
type Row struct {
	history.Entry
	Session string
}

// Repo stores history entries for one runtime session.
type Repo struct {
	db      *sql.DB
	session string
}

// NewRepo returns a repo tagging inserted rows with session.
func NewRepo(db *sql.DB, session string) *Repo {
	return &Repo{db: db, session: session}
}

// Record implements history.Sink.
func (r *Repo) Record(ctx context.Context, e history.Entry) error {
	return r.Insert(ctx, e)
}

func (r *Repo) Insert(ctx context.Context, e history.Entry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO action_history(id, session_id, seq, name, params, changed, effects, at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID.String(), r.session, e.Seq, e.Name, e.Params, e.Changed, e.Effects, e.At.UTC())
	if err != nil {
		return fmt.Errorf("insert history %s: %w", e.Name, err)
	}
	return nil
}

// List returns up to limit rows across all sessions, newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]Row, error) {
	return r.query(ctx, `
	SELECT id, session_id, seq, name, params, changed, effects, at
	FROM action_history ORDER BY at DESC, seq DESC LIMIT ?`, limit)
}

// ListSession returns up to limit rows of session, newest first.
func (r *Repo) ListSession(ctx context.Context, session string, limit int) ([]Row, error) {
	return r.query(ctx, `
	SELECT id, session_id, seq, name, params, changed, effects, at
	FROM action_history WHERE session_id = ? ORDER BY seq DESC LIMIT ?`, session, limit)
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var (
			row Row
			id  string
		)
		if err := rows.Scan(&id, &row.Session, &row.Seq, &row.Name, &row.Params, &row.Changed, &row.Effects, &row.At); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse history id %q: %w", id, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_history`).Scan(&n)
	return n, err
}

// Prune keeps the newest keep rows and deletes the rest, returning how many
// were deleted.
func (r *Repo) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM action_history WHERE id NOT IN (
		SELECT id FROM action_history ORDER BY at DESC, seq DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}
