package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type countingTransactor struct {
	calls int
}

func (t *countingTransactor) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	t.calls++

	return f(ctx)
}

func newUseCase(r *outboxRepoMock, tx *countingTransactor) *OutboxUseCase {
	return New(r, tx, logger.NewWithLogger(zerolog.Nop()))
}

func TestOutboxUseCase_ClaimPendingEvents(t *testing.T) {
	events := []*entity.OutboxEvent{{ID: uuid.New()}, {ID: uuid.New()}}

	r := &outboxRepoMock{}
	r.On("GetPendingEvents", mock.Anything, 3, 100).Return(events, nil)
	r.On("MarkAsProcessingBatch", mock.Anything, uuid.UUIDs{events[0].ID, events[1].ID}).Return(nil)

	tx := &countingTransactor{}
	got, err := newUseCase(r, tx).ClaimPendingEvents(context.Background(), 3, 100)

	require.NoError(t, err)
	assert.Equal(t, events, got)
	assert.Equal(t, 1, tx.calls)
	r.AssertExpectations(t)
}

func TestOutboxUseCase_ClaimPendingEventsEmpty(t *testing.T) {
	r := &outboxRepoMock{}
	r.On("GetPendingEvents", mock.Anything, 3, 100).Return([]*entity.OutboxEvent{}, nil)

	got, err := newUseCase(r, &countingTransactor{}).ClaimPendingEvents(context.Background(), 3, 100)

	require.NoError(t, err)
	assert.Empty(t, got)
	r.AssertNotCalled(t, "MarkAsProcessingBatch", mock.Anything, mock.Anything)
}

func TestOutboxUseCase_ClaimPendingEventsMarkFails(t *testing.T) {
	events := []*entity.OutboxEvent{{ID: uuid.New()}}

	r := &outboxRepoMock{}
	r.On("GetPendingEvents", mock.Anything, 3, 100).Return(events, nil)
	r.On("MarkAsProcessingBatch", mock.Anything, mock.Anything).Return(errors.New("conn reset"))

	got, err := newUseCase(r, &countingTransactor{}).ClaimPendingEvents(context.Background(), 3, 100)

	require.Error(t, err)
	assert.Nil(t, got)
}

func TestOutboxUseCase_CleanupOutbox(t *testing.T) {
	r := &outboxRepoMock{}
	r.On("DeleteOldProcessedAndFailed", mock.Anything).Return(int64(4), nil).Once()
	r.On("DeleteOldProcessedAndFailed", mock.Anything).Return(int64(0), errors.New("boom")).Once()

	uc := newUseCase(r, &countingTransactor{})

	require.NoError(t, uc.CleanupOutbox(context.Background()))
	require.Error(t, uc.CleanupOutbox(context.Background()))
}
