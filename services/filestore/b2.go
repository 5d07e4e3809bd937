package filestore

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
)

// B2Store keeps files in a Backblaze B2 bucket.
type B2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

var _ core.FileStore = (*B2Store)(nil)

func NewB2Store(ctx context.Context, conf *core.Config) (*B2Store, error) {
	client, err := b2.NewClient(ctx, conf.Storage.B2AccountID, conf.Storage.B2AppKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, conf.Storage.B2Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bucket %q", conf.Storage.B2Bucket)
	}
	return &B2Store{client: client, bucket: bucket}, nil
}

func (s *B2Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (core.StoredFile, error) {
	obj := s.bucket.Object(key)
	var opts []b2.WriterOption
	if contentType != "" {
		opts = append(opts, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType}))
	}
	w := obj.NewWriter(ctx, opts...)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return core.StoredFile{}, errors.Wrap(err, "writing object")
	}
	if err := w.Close(); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "closing object writer")
	}
	url := fmt.Sprintf("%s/file/%s/%s", s.bucket.BaseURL(), s.bucket.Name(), key)
	return core.StoredFile{Key: key, URL: url}, nil
}

func (s *B2Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return errors.Wrap(err, "deleting object")
	}
	return nil
}
