package storage

import (
	"context"

	"github.com/ariesbot/aries/core/logger"
	"github.com/ariesbot/aries/pagination"
	"log/slog"
)

// Language reads the stored language preference for a user, lazily creating
// the preferences row with the English default.
func (s *Store) Language(ctx context.Context, userID int64) (pagination.Language, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID,
	); err != nil {
		return pagination.LanguageEnglish, &UnavailableError{Op: "ensure row preferences", Err: err}
	}

	var raw int
	if err := s.db.GetContext(ctx, &raw,
		`SELECT language FROM preferences WHERE user_id = $1`, userID,
	); err != nil {
		return pagination.LanguageEnglish, &UnavailableError{Op: "read preferences", Err: err}
	}
	return pagination.ParseLanguage(raw), nil
}

// SetLanguage persists a language preference.
func (s *Store) SetLanguage(ctx context.Context, userID int64, lang pagination.Language) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, language) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language`,
		userID, int(lang),
	); err != nil {
		return &UnavailableError{Op: "write preferences", Err: err}
	}
	logger.Debug(ctx, "store.pagination", "preferences.language",
		slog.Int64("user_id", userID),
		slog.String("language", lang.String()),
	)
	return nil
}
