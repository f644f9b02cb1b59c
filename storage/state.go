package storage

import (
	"database/sql"

	"github.com/ariesbot/aries/pagination"
)

// State is one durable browsing-state row for a (user, category) pair.
// CurrentPage stays NULL until the first committed query, which is how a
// navigation click after a fresh restart is detected.
type State struct {
	UserID      int64          `db:"user_id"`
	MessageID   sql.NullInt64  `db:"message_id"`
	ReplyID     sql.NullInt64  `db:"reply_id"`
	Step        int            `db:"step"`
	CurrentPage sql.NullInt64  `db:"current_page"`
	LastPage    sql.NullInt64  `db:"last_page"`
	Query       sql.NullString `db:"query_params"`
}

// Initialized reports whether the row has a committed page.
func (s State) Initialized() bool {
	return s.CurrentPage.Valid
}

// Changes is a partial update. Nil fields are left untouched; for the
// nullable columns a present-but-invalid value clears the column.
type Changes struct {
	MessageID   *sql.NullInt64
	ReplyID     *sql.NullInt64
	Step        *int
	CurrentPage *int
	LastPage    *int
	Query       *string
}

// Empty reports whether the change set touches no columns.
func (c Changes) Empty() bool {
	return c.MessageID == nil && c.ReplyID == nil && c.Step == nil &&
		c.CurrentPage == nil && c.LastPage == nil && c.Query == nil
}

// Apply folds the change set into an in-memory copy of the row.
// Called only after the store accepted the same changes.
func (s *State) Apply(c Changes) {
	if c.MessageID != nil {
		s.MessageID = *c.MessageID
	}
	if c.ReplyID != nil {
		s.ReplyID = *c.ReplyID
	}
	if c.Step != nil {
		s.Step = *c.Step
	}
	if c.CurrentPage != nil {
		s.CurrentPage = sql.NullInt64{Int64: int64(*c.CurrentPage), Valid: true}
	}
	if c.LastPage != nil {
		s.LastPage = sql.NullInt64{Int64: int64(*c.LastPage), Valid: true}
	}
	if c.Query != nil {
		s.Query = sql.NullString{String: *c.Query, Valid: true}
	}
}

// SetMessageID returns a change field pointing at the given message.
func SetMessageID(id int) *sql.NullInt64 {
	return &sql.NullInt64{Int64: int64(id), Valid: true}
}

// ClearMessageID returns a change field that clears the message reference.
func ClearMessageID() *sql.NullInt64 {
	return &sql.NullInt64{}
}

// IntPtr is a convenience for building change sets.
func IntPtr(v int) *int { return &v }

// StrPtr is a convenience for building change sets.
func StrPtr(v string) *string { return &v }

func tableFor(cat pagination.Category) (string, bool) {
	switch cat {
	case pagination.CategoryAnime:
		return "keyboard_anime", true
	case pagination.CategoryManga:
		return "keyboard_manga", true
	case pagination.CategoryCharacter:
		return "keyboard_character", true
	}
	return "", false
}
