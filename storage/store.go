package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ariesbot/aries/core/logger"
	"github.com/ariesbot/aries/pagination"
	"log/slog"
)

// UnavailableError marks a database failure that must surface to the
// top-level handler instead of being retried here.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Code identifies the failure class in handler summary logs.
func (e *UnavailableError) Code() string { return "STORE_UNAVAILABLE" }

// Store persists browsing state and user preferences in Postgres.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// State reads the row for (userID, cat), creating a default row first if the
// user has not been seen before. Row creation is idempotent.
func (s *Store) State(ctx context.Context, userID int64, cat pagination.Category) (State, error) {
	table, ok := tableFor(cat)
	if !ok {
		return State{}, fmt.Errorf("storage: unknown category %q", cat)
	}

	start := time.Now()
	insert := fmt.Sprintf(`INSERT INTO %s (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, table)
	if _, err := s.db.ExecContext(ctx, insert, userID); err != nil {
		return State{}, &UnavailableError{Op: "ensure row " + table, Err: err}
	}

	var row State
	query := fmt.Sprintf(`SELECT user_id, message_id, reply_id, step, current_page, last_page, query_params FROM %s WHERE user_id = $1`, table)
	if err := s.db.GetContext(ctx, &row, query, userID); err != nil {
		return State{}, &UnavailableError{Op: "read " + table, Err: err}
	}

	logger.Debug(ctx, "store.pagination", "state.read",
		slog.Int64("user_id", userID),
		slog.String("category", string(cat)),
		slog.Bool("initialized", row.Initialized()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return row, nil
}

// Update applies a partial change set in a single transaction. Either every
// touched column is written or none are.
func (s *Store) Update(ctx context.Context, userID int64, cat pagination.Category, changes Changes) error {
	table, ok := tableFor(cat)
	if !ok {
		return fmt.Errorf("storage: unknown category %q", cat)
	}
	if changes.Empty() {
		return nil
	}

	setClause, args := buildSet(changes)
	args = append(args, userID)
	stmt := fmt.Sprintf(`UPDATE %s SET %s WHERE user_id = $%d`, table, setClause, len(args))

	start := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &UnavailableError{Op: "begin " + table, Err: err}
	}

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		_ = tx.Rollback()
		return &UnavailableError{Op: "update " + table, Err: err}
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		_ = tx.Rollback()
		return &UnavailableError{Op: "update " + table, Err: fmt.Errorf("no row for user %d", userID)}
	}
	if err := tx.Commit(); err != nil {
		return &UnavailableError{Op: "commit " + table, Err: err}
	}

	logger.Debug(ctx, "store.pagination", "state.update",
		slog.Int64("user_id", userID),
		slog.String("category", string(cat)),
		slog.Int("columns", strings.Count(setClause, "=")),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// buildSet renders the SET clause for a change set using positional
// parameters only. Values never reach the SQL text.
func buildSet(c Changes) (string, []any) {
	var (
		parts []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		parts = append(parts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if c.MessageID != nil {
		add("message_id", *c.MessageID)
	}
	if c.ReplyID != nil {
		add("reply_id", *c.ReplyID)
	}
	if c.Step != nil {
		add("step", *c.Step)
	}
	if c.CurrentPage != nil {
		add("current_page", *c.CurrentPage)
	}
	if c.LastPage != nil {
		add("last_page", *c.LastPage)
	}
	if c.Query != nil {
		add("query_params", *c.Query)
	}
	return strings.Join(parts, ", "), args
}
