package persistent

import (
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Hosting/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageOutboxRepo_PendingEventsSQL(t *testing.T) {
	r := NewImageOutboxRepo(&postgres.Postgres{Builder: postgres.NewBuilder()})

	sql, args, err := r.pendingEventsSQL(3, 100)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (status = $1 AND retry_count < $2)")
	assert.Contains(t, sql, "ORDER BY created_at ASC LIMIT 100 FOR UPDATE SKIP LOCKED")
	assert.Equal(t, []any{"pending", 3}, args)
}

func TestImageOutboxRepo_DeleteOldSQL(t *testing.T) {
	r := NewImageOutboxRepo(&postgres.Postgres{Builder: postgres.NewBuilder()})
	before := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := r.deleteOldSQL(before)
	require.NoError(t, err)

	assert.Contains(t, sql, "DELETE FROM images_outbox WHERE (status IN ($1,$2) AND created_at < $3)")
	assert.Equal(t, []any{"processed", "failed", before}, args)
}
