package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ariesbot/aries/core/logger"
	"github.com/ariesbot/aries/core/telegram/keyboard"
	"github.com/ariesbot/aries/pagination"
	"github.com/ariesbot/aries/render"
	"github.com/ariesbot/aries/storage"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const restartHint = "Please run the command again"

// States is the browsing-state surface the navigator mutates. The full
// read-compute-commit cycle for one (user, category) runs under Acquire.
type States interface {
	Acquire(userID int64, cat pagination.Category) func()
	Get(ctx context.Context, userID int64, cat pagination.Category) (storage.State, error)
	Set(ctx context.Context, userID int64, cat pagination.Category, changes storage.Changes) (storage.State, error)
}

// Renderer formats fetched items. Injected so tests can observe rendering.
type Renderer func(items []render.Item, lang pagination.Language) string

// Session identifies one inbound interaction.
type Session struct {
	UserID   int64
	ChatID   int64
	Category pagination.Category
	// MessageID is the message that triggered the interaction: the command
	// message on an initial query, the keyboard message on a click.
	MessageID int
	Language  pagination.Language
}

// Navigator runs the browsing state machine: initial queries open a
// session, navigation clicks move through it, and every committed state
// keeps the cache and store in step.
type Navigator struct {
	states    States
	fetch     ContentFetcher
	transport Transport
	render    Renderer

	perPage     int
	defaultStep int
}

// NewNavigator wires the collaborators together.
func NewNavigator(states States, fetch ContentFetcher, transport Transport, renderer Renderer, perPage, defaultStep int) *Navigator {
	if perPage <= 0 {
		perPage = 1
	}
	if defaultStep <= 0 {
		defaultStep = 1
	}
	if renderer == nil {
		renderer = render.Render
	}
	return &Navigator{
		states:      states,
		fetch:       fetch,
		transport:   transport,
		render:      renderer,
		perPage:     perPage,
		defaultStep: defaultStep,
	}
}

// StartQuery opens a new browsing session from a command. An empty
// identifier is nothing to do. State commits only after the new message is
// delivered, so a failed send never leaves a stale message reference.
func (n *Navigator) StartQuery(ctx context.Context, sess Session, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}

	release := n.states.Acquire(sess.UserID, sess.Category)
	defer release()

	query := pagination.Query{
		Identifier: identifier,
		PerPage:    n.perPage,
		Language:   sess.Language,
	}
	req := pagination.DeriveFetchRequest(sess.Category, query, 1)

	items, info, err := n.fetch.Fetch(ctx, req)
	if err != nil {
		return err
	}
	info = info.Normalize()

	text := n.renderPage(items, sess.Category, identifier, sess.Language)
	text = render.WithPageHeader(text, info.Current, info.Last)

	st, err := n.states.Get(ctx, sess.UserID, sess.Category)
	if err != nil {
		return err
	}
	if err := n.clearAndDelete(ctx, sess, st); err != nil {
		return err
	}

	// The session picks its step when it opens; the stored column only
	// echoes that choice back to later clicks.
	step := n.defaultStep

	markup := navKeyboard(sess.Category, info.Current, info.Last, step)
	msgID, err := n.send(ctx, sess.ChatID, text, markup, sess.MessageID)
	if err != nil {
		return err
	}

	encoded, err := query.Encode()
	if err != nil {
		return err
	}
	_, err = n.states.Set(ctx, sess.UserID, sess.Category, storage.Changes{
		MessageID:   storage.SetMessageID(msgID),
		ReplyID:     storage.SetMessageID(sess.MessageID),
		Step:        storage.IntPtr(step),
		CurrentPage: storage.IntPtr(info.Current),
		LastPage:    storage.IntPtr(info.Last),
		Query:       storage.StrPtr(encoded),
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "browse", "session.start",
		slog.String("category", string(sess.Category)),
		slog.String("identifier", logger.SanitizeLimit(identifier, 128)),
		slog.Int("last_page", info.Last),
	)
	return nil
}

// Navigate applies one signed-step click against the stored session.
func (n *Navigator) Navigate(ctx context.Context, sess Session, payload string) error {
	step, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		// Stale or forged payload: not an error, nothing to do.
		logger.Debug(ctx, "browse", "navigate.malformed",
			slog.String("category", string(sess.Category)),
			slog.String("payload", logger.SanitizeLimit(payload, 64)),
		)
		return nil
	}

	release := n.states.Acquire(sess.UserID, sess.Category)
	defer release()

	st, err := n.states.Get(ctx, sess.UserID, sess.Category)
	if err != nil {
		return err
	}
	if !st.Initialized() {
		// Empty store behind a live keyboard: the process restarted since
		// the session opened. Degrade to an instruction, mutate nothing.
		_, err := n.send(ctx, sess.ChatID, restartHint, nil, sess.MessageID)
		return err
	}

	current := int(st.CurrentPage.Int64)
	last := int(st.LastPage.Int64)
	if last < 1 {
		last = 1
	}

	target, noop := pagination.ComputeTarget(current, last, step)
	if noop {
		logger.Debug(ctx, "browse", "navigate.noop",
			slog.String("category", string(sess.Category)),
			slog.Int("page", current),
			slog.Int("step", step),
			slog.String("outcome", "noop"),
		)
		return nil
	}

	query, err := pagination.DecodeQuery(st.Query.String)
	if err != nil {
		_, serr := n.send(ctx, sess.ChatID, restartHint, nil, sess.MessageID)
		return serr
	}
	req := pagination.DeriveFetchRequest(sess.Category, query, target)

	items, _, err := n.fetch.Fetch(ctx, req)
	if err != nil {
		return err
	}

	text := n.renderPage(items, sess.Category, query.Identifier, query.Language)
	text = render.WithPageHeader(text, target, last)

	if err := n.clearAndDelete(ctx, sess, st); err != nil {
		return err
	}

	anchor := 0
	if st.ReplyID.Valid {
		anchor = int(st.ReplyID.Int64)
	}
	markup := navKeyboard(sess.Category, target, last, st.Step)
	msgID, err := n.send(ctx, sess.ChatID, text, markup, anchor)
	if err != nil {
		return err
	}

	_, err = n.states.Set(ctx, sess.UserID, sess.Category, storage.Changes{
		MessageID:   storage.SetMessageID(msgID),
		CurrentPage: storage.IntPtr(target),
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "browse", "navigate",
		slog.String("category", string(sess.Category)),
		slog.Int("page", current),
		slog.Int("target_page", target),
		slog.Int("last_page", last),
	)
	return nil
}

func (n *Navigator) renderPage(items []render.Item, cat pagination.Category, identifier string, lang pagination.Language) string {
	if len(items) == 0 {
		return render.NotFound(cat, identifier)
	}
	return n.render(items, lang)
}

// clearAndDelete drops the stored message reference first and only then
// attempts the delete. A failed delete is swallowed: the reference is
// already gone, so no dangling duplicate can survive.
func (n *Navigator) clearAndDelete(ctx context.Context, sess Session, st storage.State) error {
	if !st.MessageID.Valid {
		return nil
	}
	old := int(st.MessageID.Int64)

	if _, err := n.states.Set(ctx, sess.UserID, sess.Category, storage.Changes{
		MessageID: storage.ClearMessageID(),
	}); err != nil {
		return err
	}

	if err := n.transport.Delete(ctx, sess.ChatID, old); err != nil {
		logger.Debug(ctx, "browse", "delete.swallowed",
			slog.String("category", string(sess.Category)),
			slog.Int("message_id", old),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

// send delivers the text in Telegram-sized chunks. Only the final chunk
// carries the keyboard and becomes the tracked display message. A gone
// anchor falls back to an unanchored send; any other failure surfaces.
func (n *Navigator) send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup, anchorID int) (int, error) {
	chunks := render.Chunk(text, render.MaxMessageLen)

	var lastID int
	for i, chunk := range chunks {
		m := markup
		if i < len(chunks)-1 {
			m = nil
		}

		id, err := n.transport.Send(ctx, chatID, chunk, m, anchorID)
		if errors.Is(err, ErrGone) && anchorID != 0 {
			anchorID = 0
			id, err = n.transport.Send(ctx, chatID, chunk, m, 0)
		}
		if err != nil {
			return 0, err
		}
		lastID = id
	}
	return lastID, nil
}

// navKeyboard builds the Previous/Next controls. Single-page sessions get
// no keyboard at all; Next disappears on the last page.
func navKeyboard(cat pagination.Category, current, last, step int) *tele.ReplyMarkup {
	if last <= 1 {
		return nil
	}
	if step <= 0 {
		step = 1
	}

	rows := [][]keyboard.InlineBtn{
		{{Text: "Previous", Unique: string(cat), Data: strconv.Itoa(-step)}},
	}
	if current != last {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "Next", Unique: string(cat), Data: strconv.Itoa(step)},
		})
	}
	return keyboard.InlineButtonsRows(rows...)
}
