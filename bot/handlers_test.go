package bot

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/ariesbot/aries/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDumpEscapesStoredQueries(t *testing.T) {
	snapshot := map[string]storage.State{
		"42/anime": {
			UserID: 42,
			Query:  sql.NullString{String: `{"identifier":"<b>Naruto & co</b>"}`, Valid: true},
		},
	}

	text, err := cacheDump(snapshot)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "<pre>"))
	assert.True(t, strings.HasSuffix(text, "</pre>"))

	// Nothing between the pre tags may reach Telegram's HTML parser as
	// markup, whichever layer escaped it.
	body := strings.TrimSuffix(strings.TrimPrefix(text, "<pre>"), "</pre>")
	assert.NotContains(t, body, "<")
	assert.NotContains(t, body, ">")
	assert.Contains(t, body, "Naruto")
}
