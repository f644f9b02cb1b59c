package storage

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariesbot/aries/pagination"
)

func TestBuildSetOrderingAndArgs(t *testing.T) {
	ch := Changes{
		MessageID:   SetMessageID(42),
		CurrentPage: IntPtr(3),
		Query:       StrPtr(`{"identifier":"naruto"}`),
	}

	clause, args := buildSet(ch)
	assert.Equal(t, "message_id = $1, current_page = $2, query_params = $3", clause)
	require.Len(t, args, 3)
	assert.Equal(t, sql.NullInt64{Int64: 42, Valid: true}, args[0])
	assert.Equal(t, 3, args[1])
	assert.Equal(t, `{"identifier":"naruto"}`, args[2])
}

func TestBuildSetClearsMessageID(t *testing.T) {
	clause, args := buildSet(Changes{MessageID: ClearMessageID()})
	assert.Equal(t, "message_id = $1", clause)
	require.Len(t, args, 1)
	assert.Equal(t, sql.NullInt64{}, args[0])
}

func TestBuildSetFullChangeSet(t *testing.T) {
	ch := Changes{
		MessageID:   SetMessageID(1),
		ReplyID:     SetMessageID(2),
		Step:        IntPtr(5),
		CurrentPage: IntPtr(1),
		LastPage:    IntPtr(9),
		Query:       StrPtr("{}"),
	}
	clause, args := buildSet(ch)
	assert.Equal(t,
		"message_id = $1, reply_id = $2, step = $3, current_page = $4, last_page = $5, query_params = $6",
		clause)
	assert.Len(t, args, 6)
}

func TestChangesEmpty(t *testing.T) {
	assert.True(t, Changes{}.Empty())
	assert.False(t, Changes{Step: IntPtr(1)}.Empty())
}

func TestStateApply(t *testing.T) {
	st := State{UserID: 7, Step: 1}
	st.Apply(Changes{
		MessageID:   SetMessageID(100),
		ReplyID:     SetMessageID(99),
		CurrentPage: IntPtr(2),
		LastPage:    IntPtr(4),
		Query:       StrPtr(`{"identifier":"bleach"}`),
	})

	assert.Equal(t, sql.NullInt64{Int64: 100, Valid: true}, st.MessageID)
	assert.Equal(t, sql.NullInt64{Int64: 99, Valid: true}, st.ReplyID)
	assert.True(t, st.Initialized())
	assert.EqualValues(t, 2, st.CurrentPage.Int64)
	assert.EqualValues(t, 4, st.LastPage.Int64)
	assert.Equal(t, `{"identifier":"bleach"}`, st.Query.String)

	// Clearing the message reference leaves everything else alone.
	st.Apply(Changes{MessageID: ClearMessageID()})
	assert.False(t, st.MessageID.Valid)
	assert.EqualValues(t, 2, st.CurrentPage.Int64)
}

func TestTableFor(t *testing.T) {
	for _, cat := range pagination.Categories() {
		table, ok := tableFor(cat)
		require.True(t, ok)
		assert.Equal(t, "keyboard_"+string(cat), table)
	}
	_, ok := tableFor(pagination.Category("movies"))
	assert.False(t, ok)
}
