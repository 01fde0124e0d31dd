package image

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/google/uuid"
)

const _defaultExtension = "jpg"

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"heic": "image/heic",
}

// extension returns the lowercased text after the last dot of filename,
// or jpg when there is none.
func extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return _defaultExtension
	}

	return strings.ToLower(filename[i+1:])
}

func contentTypeFor(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}

	return "image/" + ext
}

// storageKey namespaces blobs by owner: <prefix>/<owner_id>/<image_id>.<ext>.
// The parts are concatenated verbatim; object keys have no path semantics.
func storageKey(prefix, ownerID, imageID, ext string) string {
	key := ownerID + "/" + imageID + "." + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}

	return key
}

func (uc *ImageUseCase) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.storeCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, uc.storeCallTimeout)
}

func (uc *ImageUseCase) newOutboxEvent(event entity.LifecycleEvent) (*entity.OutboxEvent, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - newOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: event.ImageID,
		Type:        event.Type,
		Payload:     b,
		Status:      entity.OutboxPending,
		CreatedAt:   event.OccurredAt,
		RetryCount:  0,
	}, nil
}

// recordEvent stores an event outside of any transaction. Failures are
// logged only: the operation has already taken effect.
func (uc *ImageUseCase) recordEvent(ctx context.Context, event entity.LifecycleEvent) {
	if uc.outboxRepo == nil {
		return
	}

	outboxEvent, err := uc.newOutboxEvent(event)
	if err != nil {
		uc.logger.Error(err, "ImageUseCase - recordEvent - uc.newOutboxEvent")

		return
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	err = uc.outboxRepo.Create(callCtx, outboxEvent)
	if err != nil {
		uc.logger.Error(err, "ImageUseCase - recordEvent - uc.outboxRepo.Create - type=%s image_id=%s", event.Type, event.ImageID)
	}
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func defaultClock() time.Time {
	return time.Now().UTC()
}
