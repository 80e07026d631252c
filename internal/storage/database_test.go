package storage

import (
	"testing"

	"cinematch/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPartyLiveTitleIndexCoversNonTerminalStatuses(t *testing.T) {
	ddl := partyLiveTitleIndex()

	assert.Contains(t, ddl, "CREATE UNIQUE INDEX")
	assert.Contains(t, ddl, "ON watch_parties (creator_id, tmdb_id, media_type)")
	assert.Contains(t, ddl, "WHERE status IN")
	assert.Contains(t, ddl, "deleted_at IS NULL")

	// The predicate must stay in sync with the repository's idea of a
	// non-terminal party.
	for _, status := range nonTerminalStatuses {
		assert.Contains(t, ddl, "'"+string(status)+"'")
	}
	assert.NotContains(t, ddl, string(models.WatchPartyDeclined))
}
