package filestore_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/services/filestore"
)

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := filestore.NewLocalStore(dir, "http://localhost:8000/media/")

	f, err := store.Put(ctx, "daily-reports/r1/a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "daily-reports/r1/a.txt", f.Key)
	assert.Equal(t, "http://localhost:8000/media/daily-reports/r1/a.txt", f.URL)

	content, err := os.ReadFile(filepath.Join(dir, "daily-reports", "r1", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	t.Run("keys cannot escape the directory", func(t *testing.T) {
		_, err := store.Put(ctx, "../../etc/x", strings.NewReader("x"), "")
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "etc", "x"))
		assert.NoError(t, err)
	})

	require.NoError(t, store.Delete(ctx, f.Key))
	_, err = os.Stat(filepath.Join(dir, "daily-reports", "r1", "a.txt"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, f.Key))
}

func TestThumbnailer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := filestore.NewThumbnailer(filestore.NewLocalStore(dir, "http://media"), 32)

	assert.Equal(t, "a/b/thumb_c.png", filestore.ThumbnailKey("a/b/c.png"))

	t.Run("images get a thumbnail", func(t *testing.T) {
		f, err := store.Put(ctx, "r/photo.png", bytes.NewReader(pngBytes(t, 128, 64)), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "http://media/r/photo.png", f.URL)

		thumb, err := os.Open(filepath.Join(dir, "r", "thumb_photo.png"))
		require.NoError(t, err)
		defer thumb.Close()
		cfg, err := png.DecodeConfig(thumb)
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.Width)
		assert.Equal(t, 16, cfg.Height)

		orig, err := os.Open(filepath.Join(dir, "r", "photo.png"))
		require.NoError(t, err)
		defer orig.Close()
		cfg, err = png.DecodeConfig(orig)
		require.NoError(t, err)
		assert.Equal(t, 128, cfg.Width)

		require.NoError(t, store.Delete(ctx, f.Key))
		_, err = os.Stat(filepath.Join(dir, "r", "thumb_photo.png"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(dir, "r", "photo.png"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("other files are stored as is", func(t *testing.T) {
		_, err := store.Put(ctx, "r/notes.pdf", strings.NewReader("%PDF"), "application/pdf")
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "r", "thumb_notes.pdf"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("undecodable images keep the original", func(t *testing.T) {
		_, err := store.Put(ctx, "r/broken.jpg", strings.NewReader("not a jpeg"), "image/jpeg")
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "r", "broken.jpg"))
		assert.NoError(t, err)
	})
}
