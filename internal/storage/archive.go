package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"docintake/internal/model"

	"github.com/google/uuid"
)

// Archive stores submitted originals under candidates/<id>/<uuid><ext>. A nil
// Storage disables it: every call returns ErrDisabled.
type Archive struct {
	store  Storage
	expiry time.Duration
}

// NewArchive wraps store. expiry bounds presigned download URLs.
func NewArchive(store Storage, expiry time.Duration) *Archive {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Archive{store: store, expiry: expiry}
}

// Enabled reports whether an object store is configured.
func (a *Archive) Enabled() bool { return a != nil && a.store != nil }

// Key builds the object key for a candidate's file.
func Key(candidateID model.ID, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(fileName, "\\", "/")))
	return fmt.Sprintf("candidates/%s/%s%s", candidateID, uuid.NewString(), ext)
}

// Store uploads content and returns its object info.
func (a *Archive) Store(ctx context.Context, candidateID model.ID, fileName, contentType string, content []byte) (ObjectInfo, error) {
	if !a.Enabled() {
		return ObjectInfo{}, ErrDisabled
	}
	key := Key(candidateID, fileName)
	info, err := a.store.Put(ctx, key, bytes.NewReader(content), PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"candidate-id":  candidateID.String(),
			"original-name": fileName,
		},
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("archive %s: %w", fileName, err)
	}
	return info, nil
}

// DownloadURL presigns key for GET.
func (a *Archive) DownloadURL(ctx context.Context, key string) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	return a.store.PresignGet(ctx, key, a.expiry)
}

// Open streams the archived object.
func (a *Archive) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if !a.Enabled() {
		return nil, ObjectInfo{}, ErrDisabled
	}
	return a.store.Get(ctx, key)
}

// Discard removes an archived object.
func (a *Archive) Discard(ctx context.Context, key string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	return a.store.Delete(ctx, key)
}
