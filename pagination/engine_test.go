package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampBounds(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3, 1, 5))
	assert.Equal(t, 5, Clamp(9, 1, 5))
	assert.Equal(t, 3, Clamp(3, 1, 5))
	assert.Equal(t, 1, Clamp(1, 1, 1))
}

func TestComputeTargetStaysInRange(t *testing.T) {
	steps := []int{-10, -3, -1, 0, 1, 3, 10}
	for lastPage := 1; lastPage <= 6; lastPage++ {
		for current := 1; current <= lastPage; current++ {
			for _, step := range steps {
				target, _ := ComputeTarget(current, lastPage, step)
				assert.GreaterOrEqual(t, target, 1,
					"current=%d last=%d step=%d", current, lastPage, step)
				assert.LessOrEqual(t, target, lastPage,
					"current=%d last=%d step=%d", current, lastPage, step)
			}
		}
	}
}

func TestComputeTargetNoOpAtBounds(t *testing.T) {
	target, noop := ComputeTarget(1, 5, -1)
	assert.Equal(t, 1, target)
	assert.True(t, noop, "backward from first page must be a no-op")

	target, noop = ComputeTarget(5, 5, 1)
	assert.Equal(t, 5, target)
	assert.True(t, noop, "forward from last page must be a no-op")

	target, noop = ComputeTarget(2, 5, 1)
	assert.Equal(t, 3, target)
	assert.False(t, noop)

	// Oversized step clamps to the boundary instead of wrapping.
	target, noop = ComputeTarget(2, 5, 10)
	assert.Equal(t, 5, target)
	assert.False(t, noop)
}

func TestComputeTargetSinglePageAlwaysNoOp(t *testing.T) {
	for _, step := range []int{-5, -1, 1, 5} {
		target, noop := ComputeTarget(1, 1, step)
		assert.Equal(t, 1, target)
		assert.True(t, noop, "step=%d", step)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	original := Query{Identifier: "Naruto", PerPage: 5, Language: LanguageRomaji}

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	// Derived requests differ only by page.
	first := DeriveFetchRequest(CategoryAnime, decoded, 1)
	third := DeriveFetchRequest(CategoryAnime, decoded, 3)
	assert.Equal(t, 1, first.Page)
	third.Page = first.Page
	assert.Equal(t, first, third)
}

func TestDecodeQueryRejectsGarbage(t *testing.T) {
	_, err := DecodeQuery("")
	assert.Error(t, err)

	_, err = DecodeQuery("not json")
	assert.Error(t, err)
}

func TestDecodeQueryDefaults(t *testing.T) {
	q, err := DecodeQuery(`{"identifier":"Bleach"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, q.PerPage)
	assert.Equal(t, LanguageEnglish, q.Language)
}

func TestDeriveFetchRequest(t *testing.T) {
	q := Query{Identifier: "one piece", PerPage: 2, Language: LanguageJapanese}
	req := DeriveFetchRequest(CategoryManga, q, 4)
	assert.Equal(t, FetchRequest{
		Category:   CategoryManga,
		Identifier: "one piece",
		Page:       4,
		PerPage:    2,
		Language:   LanguageJapanese,
	}, req)
}

func TestIsDirectID(t *testing.T) {
	assert.True(t, IsDirectID("12345"))
	assert.True(t, IsDirectID(" 42 "))
	assert.False(t, IsDirectID("naruto"))
	assert.False(t, IsDirectID("12a"))
	assert.False(t, IsDirectID(""))
	assert.False(t, IsDirectID("-5"))
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("movies")
	assert.Error(t, err)
}

func TestPageInfoNormalize(t *testing.T) {
	assert.Equal(t, PageInfo{Current: 1, Last: 1}, PageInfo{}.Normalize())
	assert.Equal(t, PageInfo{Current: 3, Last: 3, Total: 9}, PageInfo{Current: 7, Last: 3, Total: 9}.Normalize())
	assert.Equal(t, OnePage(), PageInfo{Current: 1, Last: 1, Total: 1})
}
