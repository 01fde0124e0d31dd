package usecase

import (
	"context"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
)

type (
	ImageUseCase interface {
		Create(ctx context.Context, in dto.UploadImage) (*entity.Image, error)
		Get(ctx context.Context, id string) (*entity.Image, error)
		DownloadURL(ctx context.Context, image *entity.Image) (string, error)
		List(ctx context.Context, filter dto.ListFilter) ([]*entity.Image, error)
		Delete(ctx context.Context, id string) error
	}

	ReconcileUseCase interface {
		Reconcile(ctx context.Context, event entity.LifecycleEvent) error
	}

	OutboxUseCase interface {
		ClaimPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}
)
