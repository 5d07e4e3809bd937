package core

import (
	"context"
	"io"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// StoredFile describes an object saved in a FileStore.
type StoredFile struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// FileStore is any object storage backend (storage buckets).
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (StoredFile, error)
	Delete(ctx context.Context, key string) error
}
