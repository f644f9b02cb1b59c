package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariesbot/aries/anilist"
	"github.com/ariesbot/aries/pagination"
)

func strptr(s string) *string { return &s }
func intptr(v int) *int       { return &v }

func TestStripTagsKeepsAllowedSet(t *testing.T) {
	in := `<b>bold</b> <u>under</u> <i>italic</i> <span class="x">span</span> <pre>code</pre>`
	out := StripTags(in)
	assert.Equal(t, `<b>bold</b> under <i>italic</i> span <pre>code</pre>`, out)
}

func TestStripTagsHandlesLinksAndBreaks(t *testing.T) {
	in := `line<br/>next <a href="https://anilist.co" title='x'>link</a><div>drop</div>`
	out := StripTags(in)
	assert.Equal(t, "line\nnext <a href=\"https://anilist.co\" title='x'>link</a>drop", out)
}

func TestChunkShortTextSinglePiece(t *testing.T) {
	chunks := Chunk("hello", 100)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestChunkPrefersNewlineBoundaries(t *testing.T) {
	text := strings.Repeat("0123456789\n", 100)
	chunks := Chunk(text, 256)
	require.Greater(t, len(chunks), 1)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 256)
		assert.False(t, strings.HasPrefix(c, "\n"))
		total += len(c)
	}
	assert.Greater(t, total, 0)
}

func TestChunkUnbrokenText(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := Chunk(text, 300)
	require.Len(t, chunks, 4)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkNeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("あ", 500) // 3 bytes each, no break points
	chunks := Chunk(text, 100)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), 100)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkFallsBackToSpaces(t *testing.T) {
	text := strings.Repeat("word ", 100) // spaces but no newlines
	chunks := Chunk(text, 64)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 64)
		assert.False(t, strings.HasPrefix(c, " "))
		assert.NotContains(t, c, "wordword")
	}
}

func TestWithPageHeader(t *testing.T) {
	assert.Equal(t, "2 of 5\n\nbody", WithPageHeader("body", 2, 5))
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, "Anime 'Naruto' not found", NotFound(pagination.CategoryAnime, "Naruto"))
	assert.Equal(t, "Character 'X' not found", NotFound(pagination.CategoryCharacter, "X"))
}

func TestMediaTitlesOrderingAndDefaults(t *testing.T) {
	title := anilist.Title{
		Romaji: strptr("Shingeki no Kyojin"),
		Native: strptr("進撃の巨人"),
	}

	english := mediaTitles(title, pagination.LanguageEnglish)
	assert.Equal(t, []string{"No english title", "Shingeki no Kyojin", "進撃の巨人"}, english)

	japanese := mediaTitles(title, pagination.LanguageJapanese)
	assert.Equal(t, "進撃の巨人", japanese[0])

	romaji := mediaTitles(title, pagination.LanguageRomaji)
	assert.Equal(t, "Shingeki no Kyojin", romaji[0])
}

func TestMediaTitlesDedupes(t *testing.T) {
	title := anilist.Title{
		Romaji:  strptr("Naruto"),
		English: strptr("Naruto"),
		Native:  strptr("ナルト"),
	}
	titles := mediaTitles(title, pagination.LanguageEnglish)
	assert.Equal(t, []string{"Naruto", "ナルト"}, titles)
}

func TestFormatMediaDefaults(t *testing.T) {
	m := &anilist.Media{ID: 1, Type: anilist.MediaAnime}
	out := MediaItem{Media: m}.HTML(pagination.LanguageEnglish)

	assert.Contains(t, out, "ID: 1")
	assert.Contains(t, out, "No description")
	assert.Contains(t, out, "Country: Not known")
	assert.Contains(t, out, "Episodes: Not known")
	assert.Contains(t, out, "Status: Status not available")
	assert.Contains(t, out, "Started: Not known")
}

func TestFormatMediaManga(t *testing.T) {
	m := &anilist.Media{
		ID:       30013,
		Type:     anilist.MediaManga,
		Chapters: intptr(700),
	}
	out := MediaItem{Media: m}.HTML(pagination.LanguageEnglish)
	assert.Contains(t, out, "Chapters: 700")
	assert.NotContains(t, out, "Episodes:")
	assert.NotContains(t, out, "Studios")
}

func TestFormatCharacter(t *testing.T) {
	c := &anilist.Character{
		ID:      17,
		Name:    anilist.CharacterName{Full: strptr("Naruto Uzumaki"), Native: strptr("うずまきナルト")},
		Gender:  strptr("Male"),
		SiteURL: "https://anilist.co/character/17",
	}
	out := CharacterItem{Character: c}.HTML(pagination.LanguageEnglish)

	assert.Contains(t, out, "Naruto Uzumaki")
	assert.Contains(t, out, "Gender: Male")
	assert.Contains(t, out, "Age: Not known")
	assert.Contains(t, out, "https://anilist.co/character/17")

	// Japanese preference lists the native name first.
	jp := CharacterItem{Character: c}.HTML(pagination.LanguageJapanese)
	assert.Less(t, strings.Index(jp, "うずまきナルト"), strings.Index(jp, "Naruto Uzumaki"))
}

func TestRenderStripsDisallowedMarkup(t *testing.T) {
	desc := "A <span>ninja</span> story"
	m := &anilist.Media{ID: 20, Type: anilist.MediaAnime, Description: &desc}
	out := Render([]Item{MediaItem{Media: m}}, pagination.LanguageEnglish)
	assert.Contains(t, out, "A ninja story")
	assert.NotContains(t, out, "<span>")
	assert.Contains(t, out, "<b>Titles</b>")
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "a\n  spoiler\n  b", cleanDescription("a~!spoiler!~b"))
	assert.Equal(t, "emphasis", cleanDescription("__emphasis__"))
}
