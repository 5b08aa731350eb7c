package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The repositories map these constraint names to their own errors.
func TestSchemaDeclaresMappedConstraints(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"tournaments", "participants", "matches"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "UNIQUE (organizer_id, name)")
	assert.Contains(t, schema, "UNIQUE (tournament_id, display_name)")
	assert.Contains(t, schema, "UNIQUE (tournament_id, round, table_number)")
	assert.Equal(t, 1, strings.Count(schema, "ON DELETE CASCADE"), "only matches follow their tournament")
}
