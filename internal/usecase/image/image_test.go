package image

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Hosting/pkg/badgerdb"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBlobs) Put(_ context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType

	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, errs.ErrBlobNotFound
	}

	return data, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)

	return nil
}

func (b *memBlobs) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blobs.local/" + key + "?expires=" + ttl.String(), nil
}

func nopLogger() logger.Interface {
	return logger.NewWithLogger(zerolog.Nop())
}

// stepClock returns strictly increasing times, one microsecond apart.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Microsecond)

		return t
	}
}

func newBadgerUseCase(t *testing.T, opts ...Option) (*ImageUseCase, *memBlobs) {
	t.Helper()

	db, err := badgerdb.New("", badgerdb.InMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blobs := newMemBlobs()
	opts = append([]Option{Clock(stepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))}, opts...)

	return New(blobs, persistent.NewImageBadgerRepo(db), nopLogger(), opts...), blobs
}

func upload(owner, filename string, tags ...string) dto.UploadImage {
	return dto.UploadImage{
		OwnerID:  owner,
		Filename: filename,
		Data:     []byte{0xFF, 0xD8, 0xFF},
		Tags:     tags,
	}
}

func TestImageUseCase_CreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	uc, blobs := newBadgerUseCase(t)

	in := upload("u1", "cat.png", "pets")
	in.Description = "sleepy"

	created, err := uc.Create(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "images/u1/"+created.ID+".png", created.StorageKey)
	assert.Equal(t, "2025-01-01T00:00:00.000000Z", created.UploadTimestamp)

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	data, err := blobs.Get(ctx, created.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, in.Data, data)
	assert.Equal(t, "image/png", blobs.types[created.StorageKey])

	url, err := uc.DownloadURL(ctx, got)
	require.NoError(t, err)
	assert.Contains(t, url, created.StorageKey)
	assert.Contains(t, url, "expires=1h0m0s")
}

func TestImageUseCase_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	uc, blobs := newBadgerUseCase(t)

	created, err := uc.Create(ctx, upload("u1", "noext"))
	require.NoError(t, err)

	assert.Equal(t, "images/u1/"+created.ID+".jpg", created.StorageKey)
	assert.Equal(t, "image/jpeg", blobs.types[created.StorageKey])
	assert.NotNil(t, created.Tags)
	assert.Empty(t, created.Tags)
}

func TestImageUseCase_CreateFreshIDs(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBadgerUseCase(t)

	a, err := uc.Create(ctx, upload("u1", "a.jpg"))
	require.NoError(t, err)
	b, err := uc.Create(ctx, upload("u1", "a.jpg"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.StorageKey, b.StorageKey)
}

func TestImageUseCase_CreateValidation(t *testing.T) {
	blobRepo := &blobRepoMock{}
	metadataRepo := &metadataRepoMock{}
	uc := New(blobRepo, metadataRepo, nopLogger())

	tests := []struct {
		name string
		in   dto.UploadImage
	}{
		{"no owner", dto.UploadImage{Filename: "a.jpg", Data: []byte{1}}},
		{"no filename", dto.UploadImage{OwnerID: "u1", Data: []byte{1}}},
		{"no data", dto.UploadImage{OwnerID: "u1", Filename: "a.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	blobRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	metadataRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestImageUseCase_CreateBlobFailureWritesNoRecord(t *testing.T) {
	blobRepo := &blobRepoMock{}
	metadataRepo := &metadataRepoMock{}
	blobRepo.On("Put", mock.Anything, mock.Anything, mock.Anything, "image/jpeg").Return(errors.New("s3 down"))

	uc := New(blobRepo, metadataRepo, nopLogger())

	_, err := uc.Create(context.Background(), upload("u1", "a.jpg"))

	assert.ErrorIs(t, err, errs.ErrStorageWrite)
	metadataRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestImageUseCase_CreateRecordFailureLeavesOrphan(t *testing.T) {
	blobRepo := &blobRepoMock{}
	metadataRepo := &metadataRepoMock{}
	blobRepo.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	metadataRepo.On("Put", mock.Anything, mock.Anything).Return(errors.New("db down"))

	m := metrics.New()
	uc := New(blobRepo, metadataRepo, nopLogger(), Metrics(m))

	_, err := uc.Create(context.Background(), upload("u1", "a.jpg"))

	assert.ErrorIs(t, err, errs.ErrStorageWrite)
	blobRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphanedBlobs))
}

func TestImageUseCase_CreateRecordsEvent(t *testing.T) {
	blobRepo := &blobRepoMock{}
	metadataRepo := &metadataRepoMock{}
	outboxRepo := &outboxRepoMock{}
	blobRepo.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	metadataRepo.On("Put", mock.Anything, mock.Anything).Return(nil)
	outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
		return e.Type == entity.EventImageCreated && e.Status == entity.OutboxPending
	})).Return(nil)

	uc := New(blobRepo, metadataRepo, nopLogger(), Events(outboxRepo, directTransactor{}))

	created, err := uc.Create(context.Background(), upload("u1", "a.jpg"))
	require.NoError(t, err)

	outboxRepo.AssertExpectations(t)
	event := outboxRepo.Calls[0].Arguments.Get(1).(*entity.OutboxEvent)
	assert.Equal(t, created.ID, event.AggregateID)
}

func TestImageUseCase_GetNotFound(t *testing.T) {
	uc, _ := newBadgerUseCase(t)

	_, err := uc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestImageUseCase_GetStoreFailure(t *testing.T) {
	metadataRepo := &metadataRepoMock{}
	metadataRepo.On("GetByID", mock.Anything, "1").Return(nil, errors.New("timeout"))

	uc := New(&blobRepoMock{}, metadataRepo, nopLogger())

	_, err := uc.Get(context.Background(), "1")

	assert.ErrorIs(t, err, errs.ErrStorageRead)
	assert.NotErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestImageUseCase_DownloadURLFailure(t *testing.T) {
	blobRepo := &blobRepoMock{}
	blobRepo.On("PresignGet", mock.Anything, "k", 10*time.Minute).Return("", errors.New("no creds"))

	uc := New(blobRepo, &metadataRepoMock{}, nopLogger(), PresignTTL(10*time.Minute))

	_, err := uc.DownloadURL(context.Background(), &entity.Image{StorageKey: "k"})

	assert.ErrorIs(t, err, errs.ErrPresign)
}

func TestImageUseCase_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	uc, blobs := newBadgerUseCase(t)

	created, err := uc.Create(ctx, upload("u1", "a.jpg"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))

	_, err = blobs.Get(ctx, created.StorageKey)
	assert.ErrorIs(t, err, errs.ErrBlobNotFound)

	_, err = uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)

	err = uc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestImageUseCase_DeletePartialFailure(t *testing.T) {
	image := &entity.Image{ID: "1", OwnerID: "u1", StorageKey: "images/u1/1.jpg"}

	tests := []struct {
		name          string
		blobErr       error
		recordErr     error
		blobDeleted   bool
		recordDeleted bool
	}{
		{"blob fails", errors.New("s3 down"), nil, false, true},
		{"record fails", nil, errors.New("db down"), true, false},
		{"both fail", errors.New("s3 down"), errors.New("db down"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobRepo := &blobRepoMock{}
			metadataRepo := &metadataRepoMock{}
			outboxRepo := &outboxRepoMock{}

			metadataRepo.On("GetByID", mock.Anything, "1").Return(image, nil)
			blobRepo.On("Delete", mock.Anything, image.StorageKey).Return(tt.blobErr)
			metadataRepo.On("Delete", mock.Anything, "1").Return(tt.recordErr)
			outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.OutboxEvent) bool {
				return e.Type == entity.EventImageDeletePartial
			})).Return(nil)

			m := metrics.New()
			uc := New(blobRepo, metadataRepo, nopLogger(), Metrics(m), Events(outboxRepo, directTransactor{}))

			err := uc.Delete(context.Background(), "1")

			var pf *errs.PartialFailureError
			require.ErrorAs(t, err, &pf)
			assert.Equal(t, tt.blobDeleted, pf.BlobDeleted)
			assert.Equal(t, tt.recordDeleted, pf.RecordDeleted)

			// both sides are always attempted
			blobRepo.AssertNumberOfCalls(t, "Delete", 1)
			metadataRepo.AssertNumberOfCalls(t, "Delete", 1)
			outboxRepo.AssertExpectations(t)
		})
	}
}

func TestImageUseCase_ListByOwnerOrdered(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBadgerUseCase(t)

	var want []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		created, err := uc.Create(ctx, upload("u1", name))
		require.NoError(t, err)
		want = append(want, created.ID)
	}
	_, err := uc.Create(ctx, upload("u2", "other.jpg"))
	require.NoError(t, err)

	images, err := uc.List(ctx, dto.ListFilter{OwnerID: "u1"})
	require.NoError(t, err)

	got := make([]string, 0, len(images))
	for _, image := range images {
		assert.Equal(t, "u1", image.OwnerID)
		got = append(got, image.ID)
	}
	assert.Equal(t, want, got)
}

func TestImageUseCase_ListDateRange(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBadgerUseCase(t)

	var created []*entity.Image
	for i := 0; i < 4; i++ {
		image, err := uc.Create(ctx, upload("u1", "a.jpg"))
		require.NoError(t, err)
		created = append(created, image)
	}

	images, err := uc.List(ctx, dto.ListFilter{
		OwnerID:  "u1",
		DateFrom: created[1].UploadTimestamp,
		DateTo:   created[2].UploadTimestamp,
	})
	require.NoError(t, err)

	require.Len(t, images, 2)
	assert.Equal(t, created[1].ID, images[0].ID)
	assert.Equal(t, created[2].ID, images[1].ID)
}

func TestImageUseCase_ListDateIgnoredWithoutOwner(t *testing.T) {
	metadataRepo := &metadataRepoMock{}
	metadataRepo.On("Scan", mock.Anything, 50).Return([]*entity.Image{{ID: "1"}, {ID: "2"}}, nil)

	uc := New(&blobRepoMock{}, metadataRepo, nopLogger())

	images, err := uc.List(context.Background(), dto.ListFilter{DateFrom: "2099-01-01T00:00:00.000000Z"})
	require.NoError(t, err)

	assert.Len(t, images, 2)
	metadataRepo.AssertNotCalled(t, "QueryByOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImageUseCase_ListTagFilterAfterLimit(t *testing.T) {
	metadataRepo := &metadataRepoMock{}
	metadataRepo.On("QueryByOwner", mock.Anything, "u1", dto.TimestampRange{}, 2).Return([]*entity.Image{
		{ID: "1", Tags: []string{"cat"}},
		{ID: "2", Tags: []string{"dog"}},
	}, nil)

	uc := New(&blobRepoMock{}, metadataRepo, nopLogger())

	images, err := uc.List(context.Background(), dto.ListFilter{OwnerID: "u1", Tag: "cat", Limit: 2})
	require.NoError(t, err)

	require.Len(t, images, 1)
	assert.Equal(t, "1", images[0].ID)
}

func TestImageUseCase_ListLimits(t *testing.T) {
	metadataRepo := &metadataRepoMock{}
	metadataRepo.On("Scan", mock.Anything, 50).Return([]*entity.Image{}, nil)
	metadataRepo.On("Scan", mock.Anything, 1000).Return([]*entity.Image{}, nil)

	uc := New(&blobRepoMock{}, metadataRepo, nopLogger())

	_, err := uc.List(context.Background(), dto.ListFilter{})
	require.NoError(t, err)
	metadataRepo.AssertCalled(t, "Scan", mock.Anything, 50)

	_, err = uc.List(context.Background(), dto.ListFilter{Limit: -1})
	require.NoError(t, err)
	metadataRepo.AssertNumberOfCalls(t, "Scan", 2)

	// above the maximum the page is clamped instead of failing
	_, err = uc.List(context.Background(), dto.ListFilter{Limit: 5000})
	require.NoError(t, err)
	metadataRepo.AssertCalled(t, "Scan", mock.Anything, 1000)
}

func TestImageUseCase_ListStoreFailure(t *testing.T) {
	metadataRepo := &metadataRepoMock{}
	metadataRepo.On("Scan", mock.Anything, 50).Return(nil, errors.New("timeout"))

	uc := New(&blobRepoMock{}, metadataRepo, nopLogger())

	_, err := uc.List(context.Background(), dto.ListFilter{})

	assert.ErrorIs(t, err, errs.ErrStorageRead)
}

func TestImageUseCase_Reconcile(t *testing.T) {
	blobRepo := &blobRepoMock{}
	metadataRepo := &metadataRepoMock{}
	blobRepo.On("Delete", mock.Anything, "images/u1/1.jpg").Return(nil)

	uc := New(blobRepo, metadataRepo, nopLogger())

	err := uc.Reconcile(context.Background(), entity.LifecycleEvent{
		Type:          entity.EventImageDeletePartial,
		ImageID:       "1",
		StorageKey:    "images/u1/1.jpg",
		RecordDeleted: true,
	})
	require.NoError(t, err)

	blobRepo.AssertExpectations(t)
	metadataRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	// other event types are ignored
	err = uc.Reconcile(context.Background(), entity.LifecycleEvent{Type: entity.EventImageCreated, ImageID: "2"})
	require.NoError(t, err)
	blobRepo.AssertNumberOfCalls(t, "Delete", 1)
}
