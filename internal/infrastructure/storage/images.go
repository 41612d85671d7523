// Package storage persists recipe photos on the local filesystem.
// Uploads are normalized: decoded, flattened onto white, resized to a
// bounded edge and re-encoded as JPEG.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // png decoding
	"os"
	"path/filepath"
	"strings"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // webp decoding
)

// allowedTypes are the upload content types the pipeline accepts.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageStore writes processed recipe photos to a local directory and
// serves back their public URLs.
type ImageStore struct {
	dir           string
	maxFileSize   int64
	maxDimension  int
	jpegQuality   int
	publicBaseURL string
	logger        *zap.Logger
}

var _ outbound.ImageStore = (*ImageStore)(nil)

// NewImageStore creates the store and its backing directory
func NewImageStore(cfg *config.Config, logger *zap.Logger) (*ImageStore, error) {
	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}

	return &ImageStore{
		dir:           cfg.Storage.UploadsDir,
		maxFileSize:   cfg.Storage.MaxFileSize,
		maxDimension:  cfg.Storage.MaxDimension,
		jpegQuality:   cfg.Storage.JPEGQuality,
		publicBaseURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
		logger:        logger.Named("storage"),
	}, nil
}

// Dir returns the directory photos are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save processes and stores a recipe photo, returning its public URL.
// Previous photos of the recipe are removed so re-uploads replace the
// file instead of accumulating.
func (s *ImageStore) Save(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (string, error) {
	if int64(len(data)) > s.maxFileSize {
		return "", apperrors.NewFileTooLargeError(s.maxFileSize)
	}
	if !allowedTypes[normalizeContentType(contentType)] {
		return "", apperrors.NewUnsupportedFileError(contentType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apperrors.NewUnsupportedFileError(contentType).WithCause(err)
	}

	processed := flattenToWhite(img)
	processed = resizeBounded(processed, s.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: s.jpegQuality}); err != nil {
		return "", fmt.Errorf("encoding jpeg: %w", err)
	}

	if err := s.removeFilesFor(recipeID); err != nil {
		return "", err
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating filename: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.jpg", recipeID, hex.EncodeToString(suffix))

	if err := os.WriteFile(filepath.Join(s.dir, filename), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	s.logger.Info("stored recipe image",
		zap.String("recipe_id", recipeID.String()),
		zap.String("file", filename),
		zap.Int("bytes", buf.Len()),
	)

	return s.publicBaseURL + "/" + filename, nil
}

// Remove deletes the stored photo a public URL points at.
func (s *ImageStore) Remove(ctx context.Context, publicURL string) error {
	filename := filepath.Base(publicURL)
	// Reject anything that is not a bare generated filename
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid image url: %s", publicURL)
	}

	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}

// removeFilesFor deletes every stored file belonging to a recipe.
func (s *ImageStore) removeFilesFor(recipeID uuid.UUID) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, recipeID.String()+"_*.jpg"))
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing previous image: %w", err)
		}
	}
	return nil
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}

// flattenToWhite composites the image onto a white background so that
// transparent PNG and webp regions do not turn black in JPEG.
func flattenToWhite(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

// resizeBounded scales the image down so its longer edge does not
// exceed maxEdge. Smaller images pass through untouched.
func resizeBounded(img *image.RGBA, maxEdge int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = h * maxEdge / w
	} else {
		nh = maxEdge
		nw = w * maxEdge / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Over, nil)
	return out
}
