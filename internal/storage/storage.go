package storage

import (
	"context"
	"io"
	"time"
)

// Object is the payload of a single upload.
type Object struct {
	Body        io.Reader
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores recipe images in remote object storage.
type Service interface {
	Upload(ctx context.Context, bucket, key string, obj Object) error
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
