package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/google/uuid"
)

type (
	// ImageBlobRepo stores raw image bytes. Delete of a missing key succeeds.
	ImageBlobRepo interface {
		Put(ctx context.Context, key string, data []byte, contentType string) error
		Get(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
		PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	}

	// ImageMetadataRepo stores image records keyed by id, with a secondary
	// path ordered by (owner_id, upload_timestamp). Put overwrites and Delete
	// of a missing id succeeds.
	ImageMetadataRepo interface {
		Put(ctx context.Context, image *entity.Image) error
		GetByID(ctx context.Context, id string) (*entity.Image, error)
		Delete(ctx context.Context, id string) error
		QueryByOwner(ctx context.Context, ownerID string, r dto.TimestampRange, limit int) ([]*entity.Image, error)
		Scan(ctx context.Context, limit int) ([]*entity.Image, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
