package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/dfryer1193/imagecat/catalog/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryImageRepository keeps records in a slice and can be told to fail
type memoryImageRepository struct {
	mu      sync.Mutex
	records []*domain.ImageRecord
	nextID  int64
	updates int
	failErr error
}

func (r *memoryImageRepository) Insert(_ context.Context, img *domain.ImageRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	r.nextID++
	img.ID = r.nextID
	stored := *img
	r.records = append(r.records, &stored)
	return img.ID, nil
}

func (r *memoryImageRepository) UpdateDimensions(_ context.Context, filePath string, width, height int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	r.updates++
	var affected int64
	for _, rec := range r.records {
		if rec.FilePath == filePath {
			rec.Width = width
			rec.Height = height
			affected++
		}
	}
	return affected, nil
}

func (r *memoryImageRepository) ListAll(_ context.Context) ([]*domain.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]*domain.ImageRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

type testCatalog struct {
	svc   *CatalogService
	repo  *memoryImageRepository
	blobs *persistence.FileBlobStore
	root  string
}

func newTestCatalog(t *testing.T) *testCatalog {
	t.Helper()
	root := filepath.Join(t.TempDir(), "images")
	repo := &memoryImageRepository{}
	blobs := persistence.NewFileBlobStore(root)

	svc := NewCatalogService(repo, blobs, NewImagingCodec())
	svc.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 5, 6, 123456000, time.Local)
	}

	return &testCatalog{svc: svc, repo: repo, blobs: blobs, root: root}
}

func (tc *testCatalog) blobSize(t *testing.T, path string) (int, int) {
	t.Helper()
	data, err := tc.blobs.Read(context.Background(), path)
	require.NoError(t, err)
	width, height, _ := decodedSize(t, data)
	return width, height
}

func TestCatalogService_Add(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()
	data := makePNG(t, 100, 50)

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", data)
	require.NoError(t, err)

	assert.Equal(t, int64(1), img.ID)
	assert.Equal(t, "cat.png", img.Name)
	assert.Equal(t, int64(len(data)), img.Size)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, "image/png", img.Type)
	assert.Equal(t, "2024-03-09 14:05:06.123456", img.DateAdded)
	assert.Equal(t, tc.root+"/cat.png", img.FilePath)

	stored, err := tc.blobs.Read(ctx, img.FilePath)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestCatalogService_Add_ContentTypeIsNotChecked(t *testing.T) {
	tc := newTestCatalog(t)

	img, err := tc.svc.Add(context.Background(), "cat.png", "text/plain", makePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", img.Type)
}

func TestCatalogService_Add_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{name: "Empty filename", filename: "", data: []byte{1}, wantErr: domain.ErrValidation},
		{name: "Not an image", filename: "notes.txt", data: []byte("hello"), wantErr: domain.ErrDecode},
		{name: "Empty upload", filename: "empty.png", data: nil, wantErr: domain.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCatalog(t)

			_, err := tc.svc.Add(context.Background(), tt.filename, "image/png", tt.data)
			assert.ErrorIs(t, err, tt.wantErr)

			records, err := tc.svc.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestCatalogService_Add_StoreFailure(t *testing.T) {
	tc := newTestCatalog(t)
	tc.repo.failErr = fmt.Errorf("%w: disk full", domain.ErrStorage)

	_, err := tc.svc.Add(context.Background(), "cat.png", "image/png", makePNG(t, 4, 4))
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestCatalogService_Add_SameFilenameTwice(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	first, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 10, 10))
	require.NoError(t, err)
	second, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 20, 30))
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, first.FilePath, second.FilePath)

	width, height := tc.blobSize(t, first.FilePath)
	assert.Equal(t, 20, width)
	assert.Equal(t, 30, height)

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCatalogService_List_PreservesInsertionOrder(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	const n = 6
	for i := 0; i < n; i++ {
		_, err := tc.svc.Add(ctx, fmt.Sprintf("img-%d.png", i), "image/png", makePNG(t, i+1, i+2))
		require.NoError(t, err)
	}

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, n)

	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("img-%d.png", i), rec.Name)
		assert.Equal(t, i+1, rec.Width)
		assert.Equal(t, i+2, rec.Height)
		if i > 0 {
			assert.Greater(t, rec.ID, records[i-1].ID)
		}
	}
}

func TestCatalogService_List_Empty(t *testing.T) {
	tc := newTestCatalog(t)

	records, err := tc.svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCatalogService_Resize(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 100, 50))
	require.NoError(t, err)

	require.NoError(t, tc.svc.Resize(ctx, img.FilePath, 200, 80))

	width, height := tc.blobSize(t, img.FilePath)
	assert.Equal(t, 200, width)
	assert.Equal(t, 80, height)

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 200, records[0].Width)
	assert.Equal(t, 80, records[0].Height)
	assert.Equal(t, img.Size, records[0].Size, "size is fixed at upload")
	assert.Equal(t, img.DateAdded, records[0].DateAdded)
}

func TestCatalogService_Resize_UpdatesEveryRecordAtPath(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 10, 10))
		require.NoError(t, err)
	}
	other, err := tc.svc.Add(ctx, "dog.png", "image/png", makePNG(t, 10, 10))
	require.NoError(t, err)

	require.NoError(t, tc.svc.Resize(ctx, tc.blobs.PathFor("cat.png"), 3, 4))

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	for _, rec := range records {
		if rec.FilePath == other.FilePath {
			assert.Equal(t, 10, rec.Width)
			continue
		}
		assert.Equal(t, 3, rec.Width)
		assert.Equal(t, 4, rec.Height)
	}
}

func TestCatalogService_Resize_NotFound(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	_, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 100, 50))
	require.NoError(t, err)
	before, err := tc.svc.List(ctx)
	require.NoError(t, err)

	err = tc.svc.Resize(ctx, tc.blobs.PathFor("missing.png"), 10, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	after, err := tc.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, tc.repo.updates)
}

func TestCatalogService_Resize_InvalidDimensions(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 100, 50))
	require.NoError(t, err)

	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-3, -3}} {
		err := tc.svc.Resize(ctx, img.FilePath, dims[0], dims[1])
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	// validation runs before the blob is looked up
	err = tc.svc.Resize(ctx, tc.blobs.PathFor("missing.png"), 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	width, height := tc.blobSize(t, img.FilePath)
	assert.Equal(t, 100, width)
	assert.Equal(t, 50, height)
	assert.Zero(t, tc.repo.updates)
}

func TestCatalogService_Resize_UndecodableBlob(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	path := tc.blobs.PathFor("broken.png")
	require.NoError(t, tc.blobs.Write(ctx, path, []byte("not really a png")))

	err := tc.svc.Resize(ctx, path, 10, 10)
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.Zero(t, tc.repo.updates)
}

func TestCatalogService_Resize_StoreFailure(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 100, 50))
	require.NoError(t, err)

	tc.repo.failErr = fmt.Errorf("%w: locked", domain.ErrStorage)
	err = tc.svc.Resize(ctx, img.FilePath, 20, 20)
	assert.ErrorIs(t, err, domain.ErrStorage)

	// no rollback: the blob keeps the new size
	width, height := tc.blobSize(t, img.FilePath)
	assert.Equal(t, 20, width)
	assert.Equal(t, 20, height)
}

func TestCatalogService_Rotate(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 100, 50))
	require.NoError(t, err)

	require.NoError(t, tc.svc.Rotate(ctx, img.FilePath, 90))

	width, height := tc.blobSize(t, img.FilePath)
	assert.Equal(t, 50, width)
	assert.Equal(t, 100, height)

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, records[0].Width, "rotate does not touch stored dimensions")
	assert.Equal(t, 50, records[0].Height)
	assert.Zero(t, tc.repo.updates)
}

func TestCatalogService_Rotate_NeverChangesRecords(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", makePNG(t, 40, 20))
	require.NoError(t, err)
	before, err := tc.svc.List(ctx)
	require.NoError(t, err)

	for _, angle := range []int{90, 45, -30, 180, 0, 270} {
		require.NoError(t, tc.svc.Rotate(ctx, img.FilePath, angle), "angle %d", angle)
	}

	after, err := tc.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCatalogService_Rotate_NotFound(t *testing.T) {
	tc := newTestCatalog(t)

	err := tc.svc.Rotate(context.Background(), tc.blobs.PathFor("missing.png"), 90)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_ResizeThenRotate(t *testing.T) {
	tc := newTestCatalog(t)
	ctx := context.Background()
	data := makePNG(t, 100, 50)

	img, err := tc.svc.Add(ctx, "cat.png", "image/png", data)
	require.NoError(t, err)
	assert.Equal(t, tc.root+"/cat.png", img.FilePath)

	require.NoError(t, tc.svc.Resize(ctx, img.FilePath, 200, 80))
	require.NoError(t, tc.svc.Rotate(ctx, img.FilePath, 90))

	records, err := tc.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 200, records[0].Width)
	assert.Equal(t, 80, records[0].Height)
	assert.Equal(t, int64(len(data)), records[0].Size)

	width, height := tc.blobSize(t, img.FilePath)
	assert.Equal(t, 80, width)
	assert.Equal(t, 200, height)
}

func TestCatalogService_Errors_AreClassifiable(t *testing.T) {
	tc := newTestCatalog(t)

	err := tc.svc.Rotate(context.Background(), tc.blobs.PathFor("missing.png"), 90)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrStorage))
}
