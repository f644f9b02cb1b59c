// Package render turns fetched records into Telegram-ready HTML. All
// functions are pure; optional fields resolve to named defaults here and
// nowhere else.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ariesbot/aries/anilist"
	"github.com/ariesbot/aries/pagination"
)

// MaxMessageLen is the Telegram text message length limit.
const MaxMessageLen = 4096

// Named defaults for absent optional fields.
const (
	notKnown      = "Not known"
	noDescription = "No description"
	noStatus      = "Status not available"
)

// allowedTags is the tag set Telegram accepts in our messages; everything
// else is stripped entirely.
var allowedTags = map[string]struct{}{
	"a": {}, "b": {}, "code": {}, "i": {}, "pre": {},
}

var (
	tagRe = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)(?:[^>"']|"[^"]*"|'[^']*')*>`)
	brRe  = regexp.MustCompile(`<br\s*/?>`)
)

// Item is a unit of fetched content that knows how to format itself.
type Item interface {
	HTML(lang pagination.Language) string
}

// MediaItem adapts an anime or manga record.
type MediaItem struct {
	Media *anilist.Media
}

// HTML implements Item.
func (it MediaItem) HTML(lang pagination.Language) string {
	return formatMedia(it.Media, lang)
}

// CharacterItem adapts a character record.
type CharacterItem struct {
	Character *anilist.Character
}

// HTML implements Item.
func (it CharacterItem) HTML(lang pagination.Language) string {
	return formatCharacter(it.Character, lang)
}

// Render formats all items and strips disallowed markup from the result.
func Render(items []Item, lang pagination.Language) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.HTML(lang))
	}
	return StripTags(b.String())
}

// NotFound is the user-visible empty-result text.
func NotFound(cat pagination.Category, identifier string) string {
	return fmt.Sprintf("%s '%s' not found", titleCase(string(cat)), identifier)
}

// WithPageHeader prepends the "N of M" position line.
func WithPageHeader(text string, current, last int) string {
	return fmt.Sprintf("%d of %d\n\n%s", current, last, text)
}

// StripTags removes every HTML tag outside the allowed set. Line breaks
// encoded as <br> survive as newlines.
func StripTags(text string) string {
	text = brRe.ReplaceAllString(text, "\n")
	return tagRe.ReplaceAllStringFunc(text, func(tag string) string {
		name := strings.ToLower(tagRe.FindStringSubmatch(tag)[1])
		if _, ok := allowedTags[name]; ok {
			return tag
		}
		return ""
	})
}

// Chunk splits text into pieces below limit. Chunk boundaries prefer
// newlines so tags and words are less likely to be cut mid-way.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = strings.LastIndexByte(text[:limit], ' ')
		}
		if cut <= 0 {
			// No break point in the window: cut hard, but never
			// through the middle of a rune.
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n ")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func strOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *v)
}

func yearOr(d anilist.FuzzyDate, fallback string) string {
	if d.Year == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *d.Year)
}
