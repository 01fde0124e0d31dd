package image

import (
	"context"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type blobRepoMock struct {
	mock.Mock
}

func (m *blobRepoMock) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *blobRepoMock) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)

	return b, args.Error(1)
}

func (m *blobRepoMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *blobRepoMock) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)

	return args.String(0), args.Error(1)
}

type metadataRepoMock struct {
	mock.Mock
}

func (m *metadataRepoMock) Put(ctx context.Context, image *entity.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *metadataRepoMock) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	args := m.Called(ctx, id)
	image, _ := args.Get(0).(*entity.Image)

	return image, args.Error(1)
}

func (m *metadataRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *metadataRepoMock) QueryByOwner(ctx context.Context, ownerID string, r dto.TimestampRange, limit int) ([]*entity.Image, error) {
	args := m.Called(ctx, ownerID, r, limit)
	images, _ := args.Get(0).([]*entity.Image)

	return images, args.Error(1)
}

func (m *metadataRepoMock) Scan(ctx context.Context, limit int) ([]*entity.Image, error) {
	args := m.Called(ctx, limit)
	images, _ := args.Get(0).([]*entity.Image)

	return images, args.Error(1)
}

type outboxRepoMock struct {
	mock.Mock
}

func (m *outboxRepoMock) Create(ctx context.Context, event *entity.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *outboxRepoMock) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	args := m.Called(ctx, maxRetries, limit)
	events, _ := args.Get(0).([]*entity.OutboxEvent)

	return events, args.Error(1)
}

func (m *outboxRepoMock) MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return m.Called(ctx, IDs).Error(0)
}

func (m *outboxRepoMock) MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return m.Called(ctx, IDs).Error(0)
}

func (m *outboxRepoMock) IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return m.Called(ctx, IDs).Error(0)
}

func (m *outboxRepoMock) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	return m.Called(ctx, maxRetries).Error(0)
}

func (m *outboxRepoMock) DeleteOldProcessedAndFailed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}
