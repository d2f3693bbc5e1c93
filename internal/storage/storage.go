// Package storage keeps the originals of successfully submitted documents in
// an S3-compatible object store so operators can download them later.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrDisabled is returned by the archive when no object store is configured.
var ErrDisabled = errors.New("document archive is not configured")

// PutObjectOptions define optional parameters for uploading objects. Size is
// the exact byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a streaming, S3-compatible object store.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
