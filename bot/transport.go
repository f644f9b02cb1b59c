package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ErrGone marks a resource-gone transport failure: the target message or
// reply anchor no longer exists. Callers degrade instead of aborting.
var ErrGone = errors.New("message gone")

// Transport abstracts the outbound chat operations the navigator performs.
type Transport interface {
	// Send delivers an HTML message. A non-zero anchorID requests a reply
	// to that message; the returned value is the new message id.
	Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup, anchorID int) (int, error)
	// Delete removes a message. Returns ErrGone when it no longer exists.
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// telebotTransport is the production Transport over a running bot.
type telebotTransport struct {
	bot *tele.Bot
}

// NewTelebotTransport wraps a bot instance.
func NewTelebotTransport(bot *tele.Bot) Transport {
	return &telebotTransport{bot: bot}
}

func (t *telebotTransport) Send(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup, anchorID int) (int, error) {
	opts := &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markup,
	}
	if anchorID != 0 {
		opts.ReplyTo = &tele.Message{ID: anchorID, Chat: &tele.Chat{ID: chatID}}
	}

	msg, err := t.bot.Send(tele.ChatID(chatID), text, opts)
	if err != nil {
		return 0, classifyTransportError(err)
	}
	return msg.ID, nil
}

func (t *telebotTransport) Delete(_ context.Context, chatID int64, messageID int) error {
	err := t.bot.Delete(&tele.StoredMessage{
		ChatID:    chatID,
		MessageID: strconv.Itoa(messageID),
	})
	if err != nil {
		return classifyTransportError(err)
	}
	return nil
}

// classifyTransportError separates resource-gone replies from real
// transport failures.
func classifyTransportError(err error) error {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 400 {
		desc := strings.ToLower(apiErr.Description)
		if strings.Contains(desc, "not found") || strings.Contains(desc, "message to delete") {
			return fmt.Errorf("%w: %s", ErrGone, apiErr.Description)
		}
	}
	return err
}
