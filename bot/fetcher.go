package bot

import (
	"context"
	"fmt"

	"github.com/ariesbot/aries/anilist"
	"github.com/ariesbot/aries/pagination"
	"github.com/ariesbot/aries/render"
)

// ContentFetcher resolves one fetch request into renderable items plus the
// paging the backend reports. An empty item list is a normal result, not an
// error.
type ContentFetcher interface {
	Fetch(ctx context.Context, req pagination.FetchRequest) ([]render.Item, pagination.PageInfo, error)
}

// aniListFetcher adapts the AniList client to the navigator's contract.
// A purely numeric identifier is a direct id lookup with degenerate paging;
// anything else is a paged title/name search.
type aniListFetcher struct {
	client *anilist.Client
}

// NewAniListFetcher wraps an AniList client.
func NewAniListFetcher(client *anilist.Client) ContentFetcher {
	return &aniListFetcher{client: client}
}

func (f *aniListFetcher) Fetch(ctx context.Context, req pagination.FetchRequest) ([]render.Item, pagination.PageInfo, error) {
	switch req.Category {
	case pagination.CategoryAnime:
		return f.fetchMedia(ctx, anilist.MediaAnime, req)
	case pagination.CategoryManga:
		return f.fetchMedia(ctx, anilist.MediaManga, req)
	case pagination.CategoryCharacter:
		return f.fetchCharacters(ctx, req)
	}
	return nil, pagination.PageInfo{}, fmt.Errorf("fetch: unknown category %q", req.Category)
}

func (f *aniListFetcher) fetchMedia(ctx context.Context, mediaType string, req pagination.FetchRequest) ([]render.Item, pagination.PageInfo, error) {
	if pagination.IsDirectID(req.Identifier) {
		id, err := anilist.ParseID(req.Identifier)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		m, err := f.client.MediaByID(ctx, id, mediaType)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		if m == nil {
			return nil, pagination.OnePage(), nil
		}
		return []render.Item{render.MediaItem{Media: m}}, pagination.OnePage(), nil
	}

	medias, page, err := f.client.SearchMedia(ctx, mediaType, req.Identifier, req.Page, req.PerPage)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	items := make([]render.Item, 0, len(medias))
	for i := range medias {
		items = append(items, render.MediaItem{Media: &medias[i]})
	}
	return items, pageInfo(page), nil
}

func (f *aniListFetcher) fetchCharacters(ctx context.Context, req pagination.FetchRequest) ([]render.Item, pagination.PageInfo, error) {
	if pagination.IsDirectID(req.Identifier) {
		id, err := anilist.ParseID(req.Identifier)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		ch, err := f.client.CharacterByID(ctx, id)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		if ch == nil {
			return nil, pagination.OnePage(), nil
		}
		return []render.Item{render.CharacterItem{Character: ch}}, pagination.OnePage(), nil
	}

	chars, page, err := f.client.SearchCharacters(ctx, req.Identifier, req.Page, req.PerPage)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	items := make([]render.Item, 0, len(chars))
	for i := range chars {
		items = append(items, render.CharacterItem{Character: &chars[i]})
	}
	return items, pageInfo(page), nil
}

func pageInfo(p anilist.PageInfo) pagination.PageInfo {
	return pagination.PageInfo{Current: p.CurrentPage, Last: p.LastPage, Total: p.Total}
}
