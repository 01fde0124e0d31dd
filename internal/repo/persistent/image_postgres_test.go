package persistent

import (
	"testing"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLOnlyMetadataRepo() *ImageMetadataRepo {
	return NewImageMetadataRepo(&postgres.Postgres{Builder: postgres.NewBuilder()})
}

func TestImageMetadataRepo_QueryByOwnerSQL(t *testing.T) {
	r := newSQLOnlyMetadataRepo()

	tests := []struct {
		name      string
		tr        dto.TimestampRange
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "owner only",
			wantWhere: "WHERE owner_id = $1 ORDER BY",
			wantArgs:  []any{"alice"},
		},
		{
			name:      "from only",
			tr:        dto.TimestampRange{From: "2025-01-01"},
			wantWhere: "WHERE owner_id = $1 AND upload_timestamp >= $2 ORDER BY",
			wantArgs:  []any{"alice", "2025-01-01"},
		},
		{
			name:      "to only",
			tr:        dto.TimestampRange{To: "2025-02-01"},
			wantWhere: "WHERE owner_id = $1 AND upload_timestamp <= $2 ORDER BY",
			wantArgs:  []any{"alice", "2025-02-01"},
		},
		{
			name:      "both bounds",
			tr:        dto.TimestampRange{From: "2025-01-01", To: "2025-02-01"},
			wantWhere: "WHERE owner_id = $1 AND upload_timestamp >= $2 AND upload_timestamp <= $3 ORDER BY",
			wantArgs:  []any{"alice", "2025-01-01", "2025-02-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := r.queryByOwnerSQL("alice", tt.tr, 50)
			require.NoError(t, err)

			assert.Contains(t, sql, "FROM images")
			assert.Contains(t, sql, tt.wantWhere)
			assert.Contains(t, sql, "ORDER BY upload_timestamp ASC LIMIT 50")
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestImageMetadataRepo_PutSQLIsUpsert(t *testing.T) {
	r := newSQLOnlyMetadataRepo()

	sql, args, err := r.putSQL(&entity.Image{
		ID:              "id-1",
		OwnerID:         "alice",
		Filename:        "vacation.jpg",
		StorageKey:      "images/alice/id-1.jpg",
		UploadTimestamp: "2025-01-01T00:00:00.000000Z",
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO images (image_id,owner_id,filename,storage_key,upload_timestamp,tags,description)")
	assert.Contains(t, sql, "ON CONFLICT (image_id) DO UPDATE SET")
	require.Len(t, args, 7)
	assert.Equal(t, []string{}, args[5], "nil tags are stored as an empty array")
}
