package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/ariesbot/aries/core/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(coreconfig.AniListConfig{APIURL: srv.URL, TimeoutSeconds: 5})
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestMediaByID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "Media(id: $id, type: $type)")
		assert.EqualValues(t, 20, req.Variables["id"])
		assert.Equal(t, "ANIME", req.Variables["type"])

		_, _ = w.Write([]byte(`{"data":{"Media":{
			"id":20,
			"type":"ANIME",
			"title":{"romaji":"Naruto","english":"Naruto","native":"ナルト"},
			"description":"A ninja story",
			"episodes":220,
			"genres":["Action"],
			"tags":[{"name":"Shounen"}],
			"studios":{"nodes":[{"name":"Pierrot"}]},
			"siteUrl":"https://anilist.co/anime/20",
			"characters":{"edges":[
				{"role":"MAIN","node":{"id":17,"name":{"full":"Naruto Uzumaki","native":"うずまきナルト"}}},
				{"role":"SUPPORTING","node":{"id":18,"name":{"full":"Someone Else"}}}
			]}
		}}}`))
	})

	m, err := client.MediaByID(context.Background(), 20, MediaAnime)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 20, m.ID)
	require.NotNil(t, m.Title.Romaji)
	assert.Equal(t, "Naruto", *m.Title.Romaji)
	require.NotNil(t, m.Episodes)
	assert.Equal(t, 220, *m.Episodes)
	assert.Equal(t, []string{"Pierrot"}, m.StudioNames())
	assert.Equal(t, []string{"Shounen"}, m.TagNames())

	main := m.MainCharacters()
	require.Len(t, main, 1)
	assert.Equal(t, "Naruto Uzumaki", *main[0].Name.Full)
}

func TestMediaByIDNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"data":{"Media":null},"errors":[{"message":"Not Found.","status":404}]}`))
	})

	m, err := client.MediaByID(context.Background(), 999999999, MediaAnime)
	require.NoError(t, err, "not found is a normal empty result")
	assert.Nil(t, m)
}

func TestSearchMediaHydratesHits(t *testing.T) {
	var detailCalls atomic.Int64
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if strings.Contains(req.Query, "pageInfo") {
			assert.Equal(t, "naruto", req.Variables["search"])
			assert.EqualValues(t, 2, req.Variables["page"])
			_, _ = w.Write([]byte(`{"data":{"Page":{
				"pageInfo":{"currentPage":2,"lastPage":3,"total":3},
				"media":[{"id":20},{"id":1735}]
			}}}`))
			return
		}
		detailCalls.Add(1)
		id := int(req.Variables["id"].(float64))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"Media": map[string]any{"id": id, "type": "ANIME"}},
		})
	})

	results, page, err := client.SearchMedia(context.Background(), MediaAnime, "naruto", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detailCalls.Load())
	assert.Equal(t, PageInfo{CurrentPage: 2, LastPage: 3, Total: 3}, page)
	require.Len(t, results, 2)
	assert.Equal(t, 20, results[0].ID)
	assert.Equal(t, 1735, results[1].ID)
}

func TestSearchMediaEmptyResult(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Page":{
			"pageInfo":{"currentPage":1,"lastPage":1,"total":0},
			"media":[]
		}}}`))
	})

	results, page, err := client.SearchMedia(context.Background(), MediaAnime, "zzzzz", 1, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, page.Total)
}

func TestCharacterByID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Character":{
			"id":17,
			"name":{"full":"Naruto Uzumaki","native":"うずまきナルト"},
			"gender":"Male",
			"age":"12-17",
			"dateOfBirth":{"year":null},
			"siteUrl":"https://anilist.co/character/17",
			"media":{"nodes":[{"id":20,"title":{"romaji":"Naruto"}}]}
		}}}`))
	})

	ch, err := client.CharacterByID(context.Background(), 17)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "Naruto Uzumaki", *ch.Name.Full)
	assert.Nil(t, ch.DateOfBirth.Year)
	require.Len(t, ch.Appearances(), 1)
}

func TestAPIErrorSurfaces(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Too Many Requests.","status":429}]}`))
	})

	_, err := client.MediaByID(context.Background(), 20, MediaAnime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too Many Requests")
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = ParseID("naruto")
	assert.Error(t, err)
}
