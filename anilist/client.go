// Package anilist is a small client for the AniList GraphQL API covering
// the lookups the bot needs: media and characters, by direct id or by
// search term with server-side paging.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	coreconfig "github.com/ariesbot/aries/core/config"
	"github.com/ariesbot/aries/core/logger"
	"github.com/ariesbot/aries/core/telegram/netutil"
	"log/slog"
)

const (
	// MediaAnime and MediaManga are the API-side media type discriminators.
	MediaAnime = "ANIME"
	MediaManga = "MANGA"

	hydrateConcurrency = 4
)

// PageInfo mirrors the paging block the API reports for search queries.
type PageInfo struct {
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	Total       int `json:"total"`
}

// Client issues GraphQL queries against the AniList API.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a client from configuration. Transient transport
// failures are retried below the request timeout.
func NewClient(cfg coreconfig.AniListConfig) *Client {
	return &Client{
		url: cfg.APIURL,
		http: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &netutil.RetryTransport{
				Base:       http.DefaultTransport,
				MaxRetries: 2,
				Backoff:    300 * time.Millisecond,
			},
		},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts one GraphQL query and decodes the data block into out.
// A pure not-found response (API status 404) yields errNotFound.
var errNotFound = fmt.Errorf("anilist: not found")

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("anilist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("anilist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error(ctx, "media.anilist", "request.fail",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return fmt.Errorf("anilist: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("anilist: read response: %w", err)
	}

	var envelope gqlEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("anilist: decode response (http %d): %w", resp.StatusCode, err)
	}

	if len(envelope.Errors) > 0 {
		if allNotFound(envelope.Errors) {
			return errNotFound
		}
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		logger.Warn(ctx, "media.anilist", "request.api_error",
			slog.Int("status", resp.StatusCode),
			slog.String("errors", strings.Join(msgs, "; ")),
		)
		return fmt.Errorf("anilist: api error (http %d): %s", resp.StatusCode, strings.Join(msgs, "; "))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anilist: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("anilist: decode data: %w", err)
	}

	logger.Debug(ctx, "media.anilist", "request.ok",
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

func allNotFound(errs []gqlError) bool {
	for _, e := range errs {
		if e.Status != http.StatusNotFound {
			return false
		}
	}
	return len(errs) > 0
}

// MediaByID fetches one media record. A missing id returns (nil, nil).
func (c *Client) MediaByID(ctx context.Context, id int, mediaType string) (*Media, error) {
	var data struct {
		Media *Media `json:"Media"`
	}
	err := c.do(ctx, mediaByIDQuery, map[string]any{"id": id, "type": mediaType}, &data)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data.Media, nil
}

// SearchMedia searches media by title and hydrates each hit with its full
// record. The returned page info is the API's own paging for the search.
func (c *Client) SearchMedia(ctx context.Context, mediaType, term string, page, perPage int) ([]Media, PageInfo, error) {
	var data struct {
		Page struct {
			PageInfo PageInfo `json:"pageInfo"`
			Media    []struct {
				ID int `json:"id"`
			} `json:"media"`
		} `json:"Page"`
	}
	vars := map[string]any{"search": term, "type": mediaType, "page": page, "perPage": perPage}
	err := c.do(ctx, searchMediaQuery, vars, &data)
	if err == errNotFound {
		return nil, PageInfo{}, nil
	}
	if err != nil {
		return nil, PageInfo{}, err
	}

	hits := data.Page.Media
	results := make([]Media, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, hit := range hits {
		i, hit := i, hit
		g.Go(func() error {
			m, err := c.MediaByID(gctx, hit.ID, mediaType)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("anilist: media %d vanished during hydration", hit.ID)
			}
			results[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, PageInfo{}, err
	}
	return results, data.Page.PageInfo, nil
}

// CharacterByID fetches one character record. A missing id returns (nil, nil).
func (c *Client) CharacterByID(ctx context.Context, id int) (*Character, error) {
	var data struct {
		Character *Character `json:"Character"`
	}
	err := c.do(ctx, characterByIDQuery, map[string]any{"id": id}, &data)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data.Character, nil
}

// SearchCharacters searches characters by name with full-record hydration.
func (c *Client) SearchCharacters(ctx context.Context, term string, page, perPage int) ([]Character, PageInfo, error) {
	var data struct {
		Page struct {
			PageInfo   PageInfo `json:"pageInfo"`
			Characters []struct {
				ID int `json:"id"`
			} `json:"characters"`
		} `json:"Page"`
	}
	vars := map[string]any{"search": term, "page": page, "perPage": perPage}
	err := c.do(ctx, searchCharactersQuery, vars, &data)
	if err == errNotFound {
		return nil, PageInfo{}, nil
	}
	if err != nil {
		return nil, PageInfo{}, err
	}

	hits := data.Page.Characters
	results := make([]Character, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, hit := range hits {
		i, hit := i, hit
		g.Go(func() error {
			ch, err := c.CharacterByID(gctx, hit.ID)
			if err != nil {
				return err
			}
			if ch == nil {
				return fmt.Errorf("anilist: character %d vanished during hydration", hit.ID)
			}
			results[i] = *ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, PageInfo{}, err
	}
	return results, data.Page.PageInfo, nil
}

// ParseID converts a direct numeric identifier.
func ParseID(identifier string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(identifier))
}
