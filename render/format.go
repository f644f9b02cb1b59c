package render

import (
	"fmt"
	"strings"

	"github.com/ariesbot/aries/anilist"
	"github.com/ariesbot/aries/pagination"
)

// mediaTitles lists the title variants, preferred language first, with the
// named default for each absent variant. Duplicates collapse in order.
func mediaTitles(t anilist.Title, lang pagination.Language) []string {
	english := strOr(t.English, "No english title")
	romaji := strOr(t.Romaji, "No romaji title")
	native := strOr(t.Native, "No japanese title")

	var ordered []string
	switch lang {
	case pagination.LanguageRomaji:
		ordered = []string{romaji, english, native}
	case pagination.LanguageJapanese:
		ordered = []string{native, english, romaji}
	default:
		ordered = []string{english, romaji, native}
	}
	return dedupe(ordered)
}

// characterNames lists name variants, preferred language first.
func characterNames(n anilist.CharacterName, lang pagination.Language) []string {
	full := strOr(n.Full, "No english name")
	native := strOr(n.Native, "No japanese name")

	if lang == pagination.LanguageJapanese {
		return dedupe([]string{native, full})
	}
	return dedupe([]string{full, native})
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func formatMedia(m *anilist.Media, lang pagination.Language) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID: %d\n\n", m.ID)
	b.WriteString("<b>Titles</b>\n")
	b.WriteString(strings.Join(mediaTitles(m.Title, lang), "\n"))
	b.WriteString("\n\n")

	b.WriteString("<b>Description</b>\n")
	fmt.Fprintf(&b, "<pre>  <i>%s</i></pre>\n\n", cleanDescription(strOr(m.Description, noDescription)))

	b.WriteString("<b>Details</b>\n")
	fmt.Fprintf(&b, "Country: %s\n", strOr(m.CountryOfOrigin, notKnown))
	if m.Type == anilist.MediaManga {
		fmt.Fprintf(&b, "Chapters: %s\n", intOr(m.Chapters, notKnown))
	} else {
		fmt.Fprintf(&b, "Episodes: %s\n", intOr(m.Episodes, notKnown))
	}
	fmt.Fprintf(&b, "Format: %s\n", strOr(m.Format, notKnown))
	fmt.Fprintf(&b, "Source: %s\n", titleCase(strings.ToLower(strOr(m.Source, ""))))
	fmt.Fprintf(&b, "Status: %s\n", titleCase(strings.ToLower(strOr(m.Status, noStatus))))
	fmt.Fprintf(&b, "Season: %s\n", titleCase(strings.ToLower(strOr(m.Season, notKnown))))
	fmt.Fprintf(&b, "Started: %s\n", yearOr(m.StartDate, notKnown))
	fmt.Fprintf(&b, "Ended: %s\n\n", yearOr(m.EndDate, notKnown))

	b.WriteString("<b>Extra Info</b>\n")
	fmt.Fprintf(&b, "<i>Genres</i>: %s\n\n", strings.Join(m.Genres, ", "))
	fmt.Fprintf(&b, "<i>Tags</i>: %s\n\n", strings.Join(m.TagNames(), ", "))
	if m.Type != anilist.MediaManga {
		fmt.Fprintf(&b, "<i>Studios</i>: %s\n\n", strings.Join(m.StudioNames(), ", "))
	}

	b.WriteString("<b>Main characters</b>\n ")
	var mains []string
	for _, ch := range m.MainCharacters() {
		mains = append(mains, strings.Join(characterNames(ch.Name, lang), "\n "))
	}
	b.WriteString(strings.Join(mains, "\n\n"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Url: <a href='%s' title='Anilist url'>%s</a>\n", m.SiteURL, m.SiteURL)
	return b.String()
}

func formatCharacter(c *anilist.Character, lang pagination.Language) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID: %d\n\n", c.ID)
	b.WriteString("<b>Names</b>\n")
	b.WriteString(strings.Join(characterNames(c.Name, lang), "\n"))
	b.WriteString("\n\n")

	b.WriteString("<b>Description</b>\n")
	fmt.Fprintf(&b, "<pre>  <i>%s</i></pre>\n\n", cleanDescription(strOr(c.Description, noDescription)))

	b.WriteString("<b>Details</b>\n")
	fmt.Fprintf(&b, "Gender: %s\n", strOr(c.Gender, notKnown))
	fmt.Fprintf(&b, "Age: %s\n", strOr(c.Age, notKnown))
	fmt.Fprintf(&b, "DOB: %s\n\n", yearOr(c.DateOfBirth, notKnown))

	b.WriteString("<b>Appearances</b>\n")
	appearances := c.Appearances()
	if len(appearances) > 8 {
		appearances = appearances[:8]
	}
	for _, m := range appearances {
		b.WriteString(strings.Join(mediaTitles(m.Title, lang), "\n"))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Url: <a href='%s' title='Anilist url'>%s</a>", c.SiteURL, c.SiteURL)
	return b.String()
}

// cleanDescription strips the spoiler markers the API leaves in raw
// description text.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "!~", "\n  ")
	s = strings.ReplaceAll(s, "~!", "\n  ")
	s = strings.ReplaceAll(s, "__", "")
	return s
}
