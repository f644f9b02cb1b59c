package pagination

import "fmt"

// Category is one of the fixed content kinds that partition browsing state.
type Category string

const (
	CategoryAnime     Category = "anime"
	CategoryManga     Category = "manga"
	CategoryCharacter Category = "character"
)

// Categories lists all known categories in a stable order.
func Categories() []Category {
	return []Category{CategoryAnime, CategoryManga, CategoryCharacter}
}

// ParseCategory validates a raw category string, typically from a callback key.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAnime, CategoryManga, CategoryCharacter:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether the category is one of the known kinds.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c Category) String() string { return string(c) }

// Language selects which title or name variant is listed first in output.
type Language int

const (
	LanguageEnglish  Language = 1
	LanguageRomaji   Language = 2
	LanguageJapanese Language = 3
)

// ParseLanguage maps a stored integer to a Language, defaulting to English.
func ParseLanguage(v int) Language {
	switch Language(v) {
	case LanguageRomaji:
		return LanguageRomaji
	case LanguageJapanese:
		return LanguageJapanese
	default:
		return LanguageEnglish
	}
}

func (l Language) String() string {
	switch l {
	case LanguageRomaji:
		return "romaji"
	case LanguageJapanese:
		return "japanese"
	default:
		return "english"
	}
}
