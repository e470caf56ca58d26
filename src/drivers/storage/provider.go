package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned when a blob id does not resolve to stored bytes
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes one stored blob
type BlobInfo struct {
	ID          string    `json:"id"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	ModTime     time.Time `json:"modTime"`
}

// Disposition selects how a browser should treat a blob URL
type Disposition string

const (
	DispositionInline     Disposition = "inline"
	DispositionAttachment Disposition = "attachment"
)

// BlobStore defines the interface for blob backends (Local, S3).
// Blobs are addressed only by opaque ids assigned on Put.
type BlobStore interface {
	// Writers
	Put(ctx context.Context, r io.Reader, contentType string) (*BlobInfo, error)
	Delete(ctx context.Context, id string) error

	// Readers
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Stat(ctx context.Context, id string) (*BlobInfo, error)
	List(ctx context.Context) ([]BlobInfo, error)

	// URLs
	ViewURL(ctx context.Context, id, filename, contentType string) (string, error)
	DownloadURL(ctx context.Context, id, filename, contentType string) (string, error)
}
