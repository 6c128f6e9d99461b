// Package storage moves seed snapshots in and out of an S3-compatible bucket.
// Objects are streamed; nothing is staged on local disk.
package storage

import (
	"context"
	"io"
	"time"
)

// CSVContentType is attached to every snapshot written by the seed tool.
const CSVContentType = "text/csv"

// PutOptions tune an upload. Size is -1 when the length is unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the slice of an object store the seed tool depends on.
type Storage interface {
	// Put uploads r under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Get opens key for streaming. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
