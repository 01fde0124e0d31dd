package image

import (
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/repo"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
)

type Option func(*ImageUseCase)

// StoreCallTimeout bounds every single adapter call. Zero disables it.
func StoreCallTimeout(timeout time.Duration) Option {
	return func(uc *ImageUseCase) {
		uc.storeCallTimeout = timeout
	}
}

func PresignTTL(ttl time.Duration) Option {
	return func(uc *ImageUseCase) {
		uc.presignTTL = ttl
	}
}

func KeyPrefix(prefix string) Option {
	return func(uc *ImageUseCase) {
		uc.keyPrefix = prefix
	}
}

func ListLimits(defaultLimit, maxLimit int) Option {
	return func(uc *ImageUseCase) {
		uc.defaultLimit = defaultLimit
		uc.maxLimit = maxLimit
	}
}

// Events enables lifecycle events: image.created is written through the
// transactor together with the metadata record.
func Events(outbox repo.OutboxRepo, transactor repo.Transactor) Option {
	return func(uc *ImageUseCase) {
		uc.outboxRepo = outbox
		uc.transactor = transactor
	}
}

func Metrics(m *metrics.Metrics) Option {
	return func(uc *ImageUseCase) {
		uc.metrics = m
	}
}

func Clock(now func() time.Time) Option {
	return func(uc *ImageUseCase) {
		uc.now = now
	}
}
