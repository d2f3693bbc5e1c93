package storage_test

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"docintake/internal/storage"
	"docintake/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	key := storage.Key("3", "Scan.PNG")
	assert.Regexp(t, regexp.MustCompile(`^candidates/3/[0-9a-f-]{36}\.png$`), key)

	assert.Regexp(t, `^candidates/3/[0-9a-f-]{36}$`, storage.Key("3", "noext"))
	assert.NotEqual(t, storage.Key("3", "a.pdf"), storage.Key("3", "a.pdf"))
}

func TestArchive_Store(t *testing.T) {
	ms := new(mocks.MockStorage)
	a := storage.NewArchive(ms, time.Minute)

	ms.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "candidates/3/") }),
		mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
			return o.Size == 4 && o.ContentType == "image/png" && o.Metadata["original-name"] == "pan.png"
		})).
		Return(func(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			b, _ := io.ReadAll(r)
			return storage.ObjectInfo{Key: key, Size: int64(len(b))}
		}, nil)

	info, err := a.Store(context.Background(), "3", "pan.png", "image/png", []byte("\x89PNG"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size)
	assert.True(t, strings.HasSuffix(info.Key, ".png"))
	ms.AssertExpectations(t)
}

func TestArchive_StoreError(t *testing.T) {
	ms := new(mocks.MockStorage)
	a := storage.NewArchive(ms, 0)

	ms.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket gone"))

	_, err := a.Store(context.Background(), "3", "pan.png", "image/png", nil)
	assert.ErrorContains(t, err, "bucket gone")
}

func TestArchive_DownloadURL(t *testing.T) {
	ms := new(mocks.MockStorage)
	a := storage.NewArchive(ms, 5*time.Minute)

	ms.On("PresignGet", mock.Anything, "candidates/3/x.png", 5*time.Minute).
		Return("https://minio.local/docs/candidates/3/x.png?sig=1", nil)

	u, err := a.DownloadURL(context.Background(), "candidates/3/x.png")
	require.NoError(t, err)
	assert.Contains(t, u, "sig=1")
	ms.AssertExpectations(t)
}

func TestArchive_Disabled(t *testing.T) {
	a := storage.NewArchive(nil, 0)
	ctx := context.Background()

	assert.False(t, a.Enabled())

	_, err := a.Store(ctx, "3", "a.pdf", "application/pdf", nil)
	assert.ErrorIs(t, err, storage.ErrDisabled)
	_, err = a.DownloadURL(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrDisabled)
	_, _, err = a.Open(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrDisabled)
	assert.ErrorIs(t, a.Discard(ctx, "k"), storage.ErrDisabled)

	var nilArchive *storage.Archive
	assert.False(t, nilArchive.Enabled())
}

func TestArchive_OpenAndDiscard(t *testing.T) {
	ms := new(mocks.MockStorage)
	a := storage.NewArchive(ms, 0)
	ctx := context.Background()

	ms.On("Get", mock.Anything, "k").Return(io.NopCloser(strings.NewReader("data")), storage.ObjectInfo{Key: "k", ContentType: "application/pdf"}, nil)
	ms.On("Delete", mock.Anything, "k").Return(nil)

	rc, info, err := a.Open(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "data", string(b))
	assert.Equal(t, "application/pdf", info.ContentType)

	require.NoError(t, a.Discard(ctx, "k"))
	ms.AssertExpectations(t)
}
