package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ariesbot/aries/pagination"
	"github.com/ariesbot/aries/render"
	"github.com/ariesbot/aries/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type fakeStates struct {
	rows     map[string]storage.State
	setCalls []storage.Changes
	setErr   error
	getErr   error
}

func newFakeStates() *fakeStates {
	return &fakeStates{rows: map[string]storage.State{}}
}

func stateKey(userID int64, cat pagination.Category) string {
	return fmt.Sprintf("%d/%s", userID, cat)
}

func (f *fakeStates) Acquire(int64, pagination.Category) func() {
	return func() {}
}

func (f *fakeStates) Get(_ context.Context, userID int64, cat pagination.Category) (storage.State, error) {
	if f.getErr != nil {
		return storage.State{}, f.getErr
	}
	st, ok := f.rows[stateKey(userID, cat)]
	if !ok {
		// A real read lazily creates the row, so step starts at the
		// schema default of 1, never zero.
		st = storage.State{Step: 1}
	}
	st.UserID = userID
	return st, nil
}

func (f *fakeStates) Set(_ context.Context, userID int64, cat pagination.Category, changes storage.Changes) (storage.State, error) {
	if f.setErr != nil {
		return storage.State{}, f.setErr
	}
	f.setCalls = append(f.setCalls, changes)
	st := f.rows[stateKey(userID, cat)]
	st.UserID = userID
	st.Apply(changes)
	f.rows[stateKey(userID, cat)] = st
	return st, nil
}

type fakeFetcher struct {
	items    []render.Item
	info     pagination.PageInfo
	err      error
	requests []pagination.FetchRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req pagination.FetchRequest) ([]render.Item, pagination.PageInfo, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, pagination.PageInfo{}, f.err
	}
	return f.items, f.info, nil
}

type sentMessage struct {
	ChatID   int64
	Text     string
	Markup   *tele.ReplyMarkup
	AnchorID int
}

type fakeTransport struct {
	sent      []sentMessage
	deleted   []int
	nextID    int
	sendErr   func(anchorID int) error
	deleteErr error
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup, anchorID int) (int, error) {
	if f.sendErr != nil {
		if err := f.sendErr(anchorID); err != nil {
			return 0, err
		}
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Markup: markup, AnchorID: anchorID})
	return 100 + f.nextID, nil
}

func (f *fakeTransport) Delete(_ context.Context, _ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr
}

type stubItem string

func (s stubItem) HTML(pagination.Language) string { return string(s) }

func testSession(cat pagination.Category) Session {
	return Session{UserID: 42, ChatID: 42, Category: cat, MessageID: 7}
}

func newTestNavigator(states *fakeStates, fetch *fakeFetcher, transport *fakeTransport) *Navigator {
	return NewNavigator(states, fetch, transport, nil, 1, 1)
}

func keyboardLabels(m *tele.ReplyMarkup) []string {
	if m == nil {
		return nil
	}
	var labels []string
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	return labels
}

func keyboardData(m *tele.ReplyMarkup) []string {
	if m == nil {
		return nil
	}
	var data []string
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			data = append(data, btn.Data)
		}
	}
	return data
}

func TestStartQueryCommitsSession(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("<b>Naruto</b>\n")},
		info:  pagination.PageInfo{Current: 1, Last: 3, Total: 3},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "Naruto")
	require.NoError(t, err)

	require.Len(t, fetch.requests, 1)
	assert.Equal(t, "Naruto", fetch.requests[0].Identifier)
	assert.Equal(t, 1, fetch.requests[0].Page)

	require.Len(t, transport.sent, 1)
	sent := transport.sent[0]
	assert.True(t, strings.HasPrefix(sent.Text, "1 of 3\n\n"))
	assert.Equal(t, 7, sent.AnchorID)
	assert.Equal(t, []string{"Previous", "Next"}, keyboardLabels(sent.Markup))

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	require.True(t, st.Initialized())
	assert.EqualValues(t, 1, st.CurrentPage.Int64)
	assert.EqualValues(t, 3, st.LastPage.Int64)
	assert.EqualValues(t, 7, st.ReplyID.Int64)
	assert.True(t, st.MessageID.Valid)

	query, err := pagination.DecodeQuery(st.Query.String)
	require.NoError(t, err)
	assert.Equal(t, "Naruto", query.Identifier)
}

func TestStartQueryUsesConfiguredStep(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("hit")},
		info:  pagination.PageInfo{Current: 1, Last: 5, Total: 5},
	}
	transport := &fakeTransport{}
	nav := NewNavigator(states, fetch, transport, nil, 1, 3)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "Naruto")
	require.NoError(t, err)

	// The keyboard payloads carry the configured magnitude, not the
	// schema default the lazily created row starts with.
	require.Len(t, transport.sent, 1)
	assert.Equal(t, []string{"-3", "3"}, keyboardData(transport.sent[0].Markup))

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.Equal(t, 3, st.Step)
}

func TestStartQueryEmptyIdentifierDoesNothing(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryManga), "   ")
	require.NoError(t, err)

	assert.Empty(t, fetch.requests)
	assert.Empty(t, transport.sent)
	assert.Empty(t, states.setCalls)
}

func TestStartQuerySinglePageSuppressesKeyboard(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("one hit")},
		info:  pagination.PageInfo{Current: 1, Last: 1, Total: 1},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "12345")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Nil(t, transport.sent[0].Markup)
}

func TestStartQueryNoResultsSendsNotFound(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{info: pagination.PageInfo{}}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryManga), "no such thing")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].Text, "Manga 'no such thing' not found")
}

func TestStartQueryReplacesPreviousMessage(t *testing.T) {
	states := newFakeStates()
	states.rows[stateKey(42, pagination.CategoryAnime)] = storage.State{
		MessageID:   intNull(500),
		CurrentPage: intNull(2),
		LastPage:    intNull(4),
	}
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("fresh")},
		info:  pagination.PageInfo{Current: 1, Last: 2, Total: 2},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "Bleach")
	require.NoError(t, err)

	assert.Equal(t, []int{500}, transport.deleted)
	// The reference must be cleared before the delete is attempted.
	require.GreaterOrEqual(t, len(states.setCalls), 2)
	first := states.setCalls[0]
	require.NotNil(t, first.MessageID)
	assert.False(t, first.MessageID.Valid)
}

func TestStartQuerySendFailureLeavesStateUncommitted(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("hit")},
		info:  pagination.PageInfo{Current: 1, Last: 2, Total: 2},
	}
	transport := &fakeTransport{
		sendErr: func(int) error { return errors.New("telegram down") },
	}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "Naruto")
	require.Error(t, err)

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.False(t, st.Initialized())
}

func seedSession(t *testing.T, states *fakeStates, cat pagination.Category, current, last int) {
	t.Helper()
	query := pagination.Query{Identifier: "Naruto", PerPage: 1, Language: pagination.LanguageEnglish}
	encoded, err := query.Encode()
	require.NoError(t, err)
	states.rows[stateKey(42, cat)] = storage.State{
		MessageID:   intNull(500),
		ReplyID:     intNull(7),
		Step:        1,
		CurrentPage: intNull(int64(current)),
		LastPage:    intNull(int64(last)),
		Query:       strNull(encoded),
	}
}

func TestNavigateAdvancesOnePage(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 1, 3)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("page two")},
		info:  pagination.PageInfo{Current: 2, Last: 3, Total: 3},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "1")
	require.NoError(t, err)

	require.Len(t, fetch.requests, 1)
	assert.Equal(t, 2, fetch.requests[0].Page)

	assert.Equal(t, []int{500}, transport.deleted)
	require.Len(t, transport.sent, 1)
	assert.True(t, strings.HasPrefix(transport.sent[0].Text, "2 of 3\n\n"))
	assert.Equal(t, 7, transport.sent[0].AnchorID)

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.EqualValues(t, 2, st.CurrentPage.Int64)
	assert.True(t, st.MessageID.Valid)
	assert.NotEqualValues(t, 500, st.MessageID.Int64)
}

func TestNavigateLastPageHidesNext(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 2, 3)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("page three")},
		info:  pagination.PageInfo{Current: 3, Last: 3, Total: 3},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "1")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, []string{"Previous"}, keyboardLabels(transport.sent[0].Markup))
}

func TestNavigateNoopAtBounds(t *testing.T) {
	for name, tc := range map[string]struct {
		current int
		payload string
	}{
		"backward from first": {current: 1, payload: "-1"},
		"forward from last":   {current: 3, payload: "1"},
	} {
		t.Run(name, func(t *testing.T) {
			states := newFakeStates()
			seedSession(t, states, pagination.CategoryAnime, tc.current, 3)
			fetch := &fakeFetcher{}
			transport := &fakeTransport{}
			nav := newTestNavigator(states, fetch, transport)

			err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), tc.payload)
			require.NoError(t, err)

			assert.Empty(t, fetch.requests)
			assert.Empty(t, transport.sent)
			assert.Empty(t, transport.deleted)
			assert.Empty(t, states.setCalls)
		})
	}
}

func TestNavigateUninitializedAsksForRestart(t *testing.T) {
	states := newFakeStates()
	fetch := &fakeFetcher{}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryCharacter), "1")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "Please run the command again", transport.sent[0].Text)
	assert.Empty(t, fetch.requests)
	assert.Empty(t, states.setCalls)
}

func TestNavigateMalformedPayloadIgnored(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 1, 3)
	fetch := &fakeFetcher{}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "lots")
	require.NoError(t, err)

	assert.Empty(t, transport.sent)
	assert.Empty(t, fetch.requests)
	assert.Empty(t, states.setCalls)
}

func TestNavigateGoneAnchorFallsBack(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 1, 3)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("page two")},
		info:  pagination.PageInfo{Current: 2, Last: 3, Total: 3},
	}
	transport := &fakeTransport{
		sendErr: func(anchorID int) error {
			if anchorID != 0 {
				return fmt.Errorf("reply target: %w", ErrGone)
			}
			return nil
		},
	}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "1")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, 0, transport.sent[0].AnchorID)

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.EqualValues(t, 2, st.CurrentPage.Int64)
}

func TestNavigateSendFailureDoesNotCommitPage(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 1, 3)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("page two")},
		info:  pagination.PageInfo{Current: 2, Last: 3, Total: 3},
	}
	transport := &fakeTransport{
		sendErr: func(int) error { return errors.New("telegram down") },
	}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "1")
	require.Error(t, err)

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.EqualValues(t, 1, st.CurrentPage.Int64)
	// The old message reference was still dropped before the failed send.
	assert.False(t, st.MessageID.Valid)
}

func TestNavigateDeleteFailureIsSwallowed(t *testing.T) {
	states := newFakeStates()
	seedSession(t, states, pagination.CategoryAnime, 1, 3)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem("page two")},
		info:  pagination.PageInfo{Current: 2, Last: 3, Total: 3},
	}
	transport := &fakeTransport{deleteErr: errors.New("message to delete not found")}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.Navigate(context.Background(), testSession(pagination.CategoryAnime), "1")
	require.NoError(t, err)

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	assert.EqualValues(t, 2, st.CurrentPage.Int64)
}

func TestSendChunksKeyboardOnLastChunkOnly(t *testing.T) {
	states := newFakeStates()
	long := strings.Repeat("a", render.MaxMessageLen) + "\n" + strings.Repeat("b", 100)
	fetch := &fakeFetcher{
		items: []render.Item{stubItem(long)},
		info:  pagination.PageInfo{Current: 1, Last: 2, Total: 2},
	}
	transport := &fakeTransport{}
	nav := newTestNavigator(states, fetch, transport)

	err := nav.StartQuery(context.Background(), testSession(pagination.CategoryAnime), "Long")
	require.NoError(t, err)

	require.Greater(t, len(transport.sent), 1)
	last := len(transport.sent) - 1
	for i, sent := range transport.sent {
		if i == last {
			assert.NotNil(t, sent.Markup)
		} else {
			assert.Nil(t, sent.Markup)
		}
	}

	st := states.rows[stateKey(42, pagination.CategoryAnime)]
	require.True(t, st.MessageID.Valid)
	// The tracked message is the final chunk, the one carrying the keyboard.
	assert.EqualValues(t, 100+transport.nextID, st.MessageID.Int64)
}

func intNull(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func strNull(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}
