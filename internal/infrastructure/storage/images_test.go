package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/pkg/errors"
	"github.com/cookingcapture/api/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.UploadsDir = t.TempDir()
	cfg.Storage.MaxFileSize = 10 << 20
	cfg.Storage.MaxDimension = 1200
	cfg.Storage.JPEGQuality = 85
	cfg.Storage.PublicBaseURL = "/api/uploads"

	store, err := NewImageStore(cfg, logger.NewNop())
	require.NoError(t, err)
	return store
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func storedFiles(t *testing.T, store *ImageStore) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(store.Dir(), "*.jpg"))
	require.NoError(t, err)
	return matches
}

func TestSaveProducesBoundedJPEG(t *testing.T) {
	store := newTestStore(t)
	recipeID := uuid.New()

	data := encodePNG(t, solidImage(2000, 1000, color.RGBA{R: 200, A: 255}))
	url, err := store.Save(context.Background(), recipeID, data, "image/png")
	require.NoError(t, err)
	assert.Contains(t, url, "/api/uploads/"+recipeID.String()+"_")
	assert.Contains(t, url, ".jpg")

	files := storedFiles(t, store)
	require.Len(t, files, 1)

	stored, err := os.ReadFile(files[0])
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(stored))
	require.NoError(t, err)

	// Longer edge capped at 1200, aspect ratio preserved
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestSaveKeepsSmallImagesUnscaled(t *testing.T) {
	store := newTestStore(t)

	data := encodePNG(t, solidImage(400, 300, color.RGBA{G: 128, A: 255}))
	_, err := store.Save(context.Background(), uuid.New(), data, "image/png")
	require.NoError(t, err)

	stored, err := os.ReadFile(storedFiles(t, store)[0])
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestSaveFlattensTransparencyToWhite(t *testing.T) {
	store := newTestStore(t)

	// Fully transparent image must come out white, not black
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 10, 10)))
	_, err := store.Save(context.Background(), uuid.New(), data, "image/png")
	require.NoError(t, err)

	stored, err := os.ReadFile(storedFiles(t, store)[0])
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(stored))
	require.NoError(t, err)

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestSaveReplacesPreviousImage(t *testing.T) {
	store := newTestStore(t)
	recipeID := uuid.New()
	data := encodePNG(t, solidImage(10, 10, color.RGBA{B: 255, A: 255}))

	first, err := store.Save(context.Background(), recipeID, data, "image/png")
	require.NoError(t, err)
	second, err := store.Save(context.Background(), recipeID, data, "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// Only the latest file remains on disk
	assert.Len(t, storedFiles(t, store), 1)
}

func TestSaveRejectsBadUploads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("oversized file", func(t *testing.T) {
		big := make([]byte, 11<<20)
		_, err := store.Save(ctx, uuid.New(), big, "image/png")
		assert.True(t, errors.Is(err, errors.CodeFileTooLarge))
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := store.Save(ctx, uuid.New(), []byte("GIF89a"), "image/gif")
		assert.True(t, errors.Is(err, errors.CodeUnsupportedFile))
	})

	t.Run("corrupt image data", func(t *testing.T) {
		_, err := store.Save(ctx, uuid.New(), []byte("not an image"), "image/png")
		assert.True(t, errors.Is(err, errors.CodeUnsupportedFile))
	})
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	data := encodePNG(t, solidImage(10, 10, color.RGBA{A: 255}))

	url, err := store.Save(context.Background(), uuid.New(), data, "image/png")
	require.NoError(t, err)
	require.Len(t, storedFiles(t, store), 1)

	require.NoError(t, store.Remove(context.Background(), url))
	assert.Empty(t, storedFiles(t, store))

	// Removing a missing file is not an error
	assert.NoError(t, store.Remove(context.Background(), url))

	// Path traversal is rejected
	assert.Error(t, store.Remove(context.Background(), "/api/uploads/.."))
}
