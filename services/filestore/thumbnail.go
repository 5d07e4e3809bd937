package filestore

import (
	"bytes"
	"context"
	"image"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
)

var thumbnailFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
}

// Thumbnailer stores a resized copy next to every image put in the wrapped store.
// The copy is named `thumb_<name>` and is removed along with the original.
type Thumbnailer struct {
	core.FileStore
	width int
}

var _ core.FileStore = (*Thumbnailer)(nil)

func NewThumbnailer(store core.FileStore, width int) *Thumbnailer {
	return &Thumbnailer{FileStore: store, width: width}
}

// ThumbnailKey returns the key of the thumbnail of `key`.
func ThumbnailKey(key string) string {
	dir, name := path.Split(key)
	return dir + "thumb_" + name
}

func (t *Thumbnailer) Put(ctx context.Context, key string, r io.Reader, contentType string) (core.StoredFile, error) {
	format, isImage := thumbnailFormats[strings.ToLower(contentType)]
	if !isImage || t.width <= 0 {
		return t.FileStore.Put(ctx, key, r, contentType)
	}

	buf := new(bytes.Buffer)
	f, err := t.FileStore.Put(ctx, key, io.TeeReader(r, buf), contentType)
	if err != nil {
		return core.StoredFile{}, err
	}

	img, err := imaging.Decode(buf, imaging.AutoOrientation(true))
	if err != nil {
		// not decodable: keep the original without a thumbnail
		return f, nil
	}
	thumb := new(bytes.Buffer)
	if err = imaging.Encode(thumb, t.resize(img), format); err != nil {
		_ = t.FileStore.Delete(ctx, key)
		return core.StoredFile{}, errors.Wrap(err, "encoding thumbnail")
	}
	if _, err = t.FileStore.Put(ctx, ThumbnailKey(key), thumb, contentType); err != nil {
		_ = t.FileStore.Delete(ctx, key)
		return core.StoredFile{}, errors.Wrap(err, "storing thumbnail")
	}
	return f, nil
}

func (t *Thumbnailer) resize(img image.Image) image.Image {
	if img.Bounds().Dx() <= t.width {
		return img
	}
	return imaging.Resize(img, t.width, 0, imaging.Lanczos)
}

func (t *Thumbnailer) Delete(ctx context.Context, key string) error {
	if err := t.FileStore.Delete(ctx, ThumbnailKey(key)); err != nil {
		return err
	}
	return t.FileStore.Delete(ctx, key)
}
