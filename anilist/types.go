package anilist

// Optional fields are pointers; formatting resolves named defaults at the
// rendering boundary, never here.

// Title holds the media title variants.
type Title struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
	Native  *string `json:"native"`
}

// CharacterName holds the character name variants.
type CharacterName struct {
	Full   *string `json:"full"`
	Native *string `json:"native"`
}

// FuzzyDate is a partially known calendar date.
type FuzzyDate struct {
	Year *int `json:"year"`
}

// Tag is a descriptive media tag.
type Tag struct {
	Name string `json:"name"`
}

type studioNodes struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
}

// CharacterEdge links a media record to one of its characters with a role.
type CharacterEdge struct {
	Role string     `json:"role"`
	Node *Character `json:"node"`
}

type characterEdges struct {
	Edges []CharacterEdge `json:"edges"`
}

type mediaNodes struct {
	Nodes []Media `json:"nodes"`
}

// Media is one anime or manga record.
type Media struct {
	ID              int            `json:"id"`
	Type            string         `json:"type"`
	Title           Title          `json:"title"`
	Description     *string        `json:"description"`
	CountryOfOrigin *string        `json:"countryOfOrigin"`
	Episodes        *int           `json:"episodes"`
	Chapters        *int           `json:"chapters"`
	Format          *string        `json:"format"`
	Source          *string        `json:"source"`
	Status          *string        `json:"status"`
	Season          *string        `json:"season"`
	StartDate       FuzzyDate      `json:"startDate"`
	EndDate         FuzzyDate      `json:"endDate"`
	Genres          []string       `json:"genres"`
	Tags            []Tag          `json:"tags"`
	Studios         studioNodes    `json:"studios"`
	SiteURL         string         `json:"siteUrl"`
	Characters      characterEdges `json:"characters"`
}

// StudioNames flattens the studio connection.
func (m *Media) StudioNames() []string {
	names := make([]string, 0, len(m.Studios.Nodes))
	for _, n := range m.Studios.Nodes {
		names = append(names, n.Name)
	}
	return names
}

// TagNames flattens the tag list.
func (m *Media) TagNames() []string {
	names := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		names = append(names, t.Name)
	}
	return names
}

// MainCharacters returns the characters credited with a MAIN role.
func (m *Media) MainCharacters() []*Character {
	var main []*Character
	for _, edge := range m.Characters.Edges {
		if edge.Node != nil && edge.Role == "MAIN" {
			main = append(main, edge.Node)
		}
	}
	return main
}

// Character is one character record, possibly with its media appearances.
type Character struct {
	ID          int           `json:"id"`
	Name        CharacterName `json:"name"`
	Description *string       `json:"description"`
	Gender      *string       `json:"gender"`
	Age         *string       `json:"age"`
	DateOfBirth FuzzyDate     `json:"dateOfBirth"`
	SiteURL     string        `json:"siteUrl"`
	Media       mediaNodes    `json:"media"`
}

// Appearances returns the media the character shows up in.
func (c *Character) Appearances() []Media {
	return c.Media.Nodes
}
