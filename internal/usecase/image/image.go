package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/internal/repo"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	_defaultKeyPrefix    = "images"
	_defaultPresignTTL   = time.Hour
	_defaultListLimit    = 50
	_defaultMaxListLimit = 1000
)

// ImageUseCase keeps blobs and metadata records in step. It holds no
// per-request state and is safe for concurrent use.
type ImageUseCase struct {
	blobRepo     repo.ImageBlobRepo
	metadataRepo repo.ImageMetadataRepo
	outboxRepo   repo.OutboxRepo
	transactor   repo.Transactor

	storeCallTimeout time.Duration
	presignTTL       time.Duration
	keyPrefix        string
	defaultLimit     int
	maxLimit         int
	now              func() time.Time

	metrics *metrics.Metrics
	logger  logger.Interface
}

func New(
	blobRepo repo.ImageBlobRepo,
	metadataRepo repo.ImageMetadataRepo,
	l logger.Interface,
	opts ...Option,
) *ImageUseCase {
	uc := &ImageUseCase{
		blobRepo:     blobRepo,
		metadataRepo: metadataRepo,
		transactor:   directTransactor{},
		presignTTL:   _defaultPresignTTL,
		keyPrefix:    _defaultKeyPrefix,
		defaultLimit: _defaultListLimit,
		maxLimit:     _defaultMaxListLimit,
		now:          defaultClock,
		logger:       l,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *ImageUseCase) Create(ctx context.Context, in dto.UploadImage) (*entity.Image, error) {
	if in.OwnerID == "" || in.Filename == "" || len(in.Data) == 0 {
		return nil, fmt.Errorf("ImageUseCase - Create: %w: owner_id, filename and image data are required", errs.ErrValidation)
	}

	imageID := uuid.NewString()
	ext := extension(in.Filename)
	key := storageKey(uc.keyPrefix, in.OwnerID, imageID, ext)

	// 1. blob first: without it there is nothing for a record to point at
	callCtx, cancel := uc.callCtx(ctx)
	err := uc.blobRepo.Put(callCtx, key, in.Data, contentTypeFor(ext))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Create - uc.blobRepo.Put: %w: %w", errs.ErrStorageWrite, err)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	image := &entity.Image{
		ID:              imageID,
		OwnerID:         in.OwnerID,
		Filename:        in.Filename,
		StorageKey:      key,
		UploadTimestamp: entity.FormatTimestamp(uc.now()),
		Tags:            tags,
		Description:     in.Description,
	}

	// 2. metadata record (and the created event, in the same transaction)
	callCtx, cancel = uc.callCtx(ctx)
	err = uc.transactor.WithinTransaction(callCtx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Put(ctx, image); err != nil {
			return fmt.Errorf("uc.metadataRepo.Put: %w", err)
		}

		if uc.outboxRepo == nil {
			return nil
		}

		event, err := uc.newOutboxEvent(entity.LifecycleEvent{
			Type:       entity.EventImageCreated,
			ImageID:    image.ID,
			OwnerID:    image.OwnerID,
			StorageKey: image.StorageKey,
			OccurredAt: uc.now(),
		})
		if err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	cancel()
	if err != nil {
		// The blob stays behind without a record. It is reported, not removed.
		uc.metrics.OrphanedBlob()
		uc.logger.Warn("ImageUseCase - Create - orphaned blob key=%s image_id=%s: %v", key, imageID, err)

		return nil, fmt.Errorf("ImageUseCase - Create - uc.transactor.WithinTransaction: %w: %w", errs.ErrStorageWrite, err)
	}

	return image, nil
}

func (uc *ImageUseCase) Get(ctx context.Context, id string) (*entity.Image, error) {
	if id == "" {
		return nil, fmt.Errorf("ImageUseCase - Get: %w: image id is required", errs.ErrValidation)
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	image, err := uc.metadataRepo.GetByID(callCtx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, fmt.Errorf("ImageUseCase - Get: %w", err)
		}
		return nil, fmt.Errorf("ImageUseCase - Get - uc.metadataRepo.GetByID: %w: %w", errs.ErrStorageRead, err)
	}

	return image, nil
}

func (uc *ImageUseCase) DownloadURL(ctx context.Context, image *entity.Image) (string, error) {
	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	url, err := uc.blobRepo.PresignGet(callCtx, image.StorageKey, uc.presignTTL)
	if err != nil {
		return "", fmt.Errorf("ImageUseCase - DownloadURL - uc.blobRepo.PresignGet: %w: %w", errs.ErrPresign, err)
	}

	return url, nil
}

// List picks the read path by owner: with an owner it queries the ordered
// owner path bounded by the date range; without one it scans and the date
// range is not applied. The tag filter runs on the fetched window, so fewer
// than limit records may come back even when more matches exist.
func (uc *ImageUseCase) List(ctx context.Context, filter dto.ListFilter) ([]*entity.Image, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	// oversized pages are cut down, not rejected
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	var (
		images []*entity.Image
		err    error
	)

	if filter.OwnerID != "" {
		images, err = uc.metadataRepo.QueryByOwner(callCtx, filter.OwnerID, dto.TimestampRange{
			From: filter.DateFrom,
			To:   filter.DateTo,
		}, limit)
	} else {
		// TODO: apply date_from/date_to on the scan path too once product
		// confirms the filter should not require owner_id.
		if filter.DateFrom != "" || filter.DateTo != "" {
			uc.logger.Debug("ImageUseCase - List - date range ignored without owner_id")
		}
		images, err = uc.metadataRepo.Scan(callCtx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - List: %w: %w", errs.ErrStorageRead, err)
	}

	if filter.Tag == "" {
		return images, nil
	}

	filtered := make([]*entity.Image, 0, len(images))
	for _, image := range images {
		if image.HasTag(filter.Tag) {
			filtered = append(filtered, image)
		}
	}

	return filtered, nil
}

// Delete removes the blob and the record independently. Both are always
// attempted; if either fails the error is a *errs.PartialFailureError
// carrying both outcomes. Nothing is rolled back or retried.
func (uc *ImageUseCase) Delete(ctx context.Context, id string) error {
	// 1. lookup
	image, err := uc.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Delete: %w", err)
	}

	// 2. blob
	callCtx, cancel := uc.callCtx(ctx)
	blobErr := uc.blobRepo.Delete(callCtx, image.StorageKey)
	cancel()

	// 3. record
	callCtx, cancel = uc.callCtx(ctx)
	recordErr := uc.metadataRepo.Delete(callCtx, image.ID)
	cancel()

	event := entity.LifecycleEvent{
		Type:          entity.EventImageDeleted,
		ImageID:       image.ID,
		OwnerID:       image.OwnerID,
		StorageKey:    image.StorageKey,
		BlobDeleted:   blobErr == nil,
		RecordDeleted: recordErr == nil,
		OccurredAt:    uc.now(),
	}

	if blobErr != nil || recordErr != nil {
		pf := &errs.PartialFailureError{
			BlobDeleted:   blobErr == nil,
			RecordDeleted: recordErr == nil,
			BlobErr:       blobErr,
			RecordErr:     recordErr,
		}

		uc.metrics.PartialDelete(pf.BlobDeleted, pf.RecordDeleted)
		uc.logger.Warn("ImageUseCase - Delete - partial failure image_id=%s key=%s blob_deleted=%t record_deleted=%t",
			image.ID, image.StorageKey, pf.BlobDeleted, pf.RecordDeleted)

		event.Type = entity.EventImageDeletePartial
		uc.recordEvent(ctx, event)

		return fmt.Errorf("ImageUseCase - Delete: %w", pf)
	}

	uc.recordEvent(ctx, event)

	return nil
}

// Reconcile finishes a partial delete out of band by repeating the side
// that failed. Both deletes are idempotent, so replays are harmless.
func (uc *ImageUseCase) Reconcile(ctx context.Context, event entity.LifecycleEvent) error {
	if event.Type != entity.EventImageDeletePartial {
		return nil
	}

	var errList []error

	if !event.BlobDeleted && event.StorageKey != "" {
		callCtx, cancel := uc.callCtx(ctx)
		err := uc.blobRepo.Delete(callCtx, event.StorageKey)
		cancel()
		if err != nil {
			errList = append(errList, fmt.Errorf("uc.blobRepo.Delete: %w", err))
		}
	}

	if !event.RecordDeleted && event.ImageID != "" {
		callCtx, cancel := uc.callCtx(ctx)
		err := uc.metadataRepo.Delete(callCtx, event.ImageID)
		cancel()
		if err != nil {
			errList = append(errList, fmt.Errorf("uc.metadataRepo.Delete: %w", err))
		}
	}

	if err := errors.Join(errList...); err != nil {
		return fmt.Errorf("ImageUseCase - Reconcile - image_id=%s: %w", event.ImageID, err)
	}

	uc.logger.Info("ImageUseCase - Reconcile - image_id=%s reconciled", event.ImageID)

	return nil
}
