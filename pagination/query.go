package pagination

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query is the parameter bundle captured at initial-query time. It carries
// everything needed to re-issue the content fetch for an arbitrary page,
// since the original user input is not available during navigation.
type Query struct {
	Identifier string   `json:"identifier"`
	PerPage    int      `json:"per_page"`
	Language   Language `json:"language"`
}

// Encode serializes the query for durable storage.
func (q Query) Encode() (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	return string(data), nil
}

// DecodeQuery restores a query from its stored form.
func DecodeQuery(s string) (Query, error) {
	var q Query
	if strings.TrimSpace(s) == "" {
		return q, fmt.Errorf("decode query: empty payload")
	}
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return q, fmt.Errorf("decode query: %w", err)
	}
	if q.PerPage <= 0 {
		q.PerPage = 1
	}
	q.Language = ParseLanguage(int(q.Language))
	return q, nil
}

// FetchRequest names every argument the content-fetch collaborator needs for
// one page. It is derived purely from stored state.
type FetchRequest struct {
	Category   Category
	Identifier string
	Page       int
	PerPage    int
	Language   Language
}

// DeriveFetchRequest rebuilds the fetch arguments for the given target page.
func DeriveFetchRequest(cat Category, q Query, page int) FetchRequest {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 1
	}
	return FetchRequest{
		Category:   cat,
		Identifier: q.Identifier,
		Page:       page,
		PerPage:    perPage,
		Language:   ParseLanguage(int(q.Language)),
	}
}
