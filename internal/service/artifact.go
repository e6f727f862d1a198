package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path"
	"strings"

	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/logger"
	"github.com/Shadota/VN-Background-Generator/internal/storage"
)

// thumbnailWidth is the preview width; height keeps the aspect ratio.
const thumbnailWidth = 320

// ArtifactArchiver copies completed renders off the rendering backend
// into object storage, alongside a small preview thumbnail, and returns
// the archived object's public URL.
type ArtifactArchiver struct {
	store storage.ObjectStorage
}

// NewArtifactArchiver creates an archiver backed by the given storage.
func NewArtifactArchiver(store storage.ObjectStorage) *ArtifactArchiver {
	return &ArtifactArchiver{store: store}
}

// Archive fetches the artifact bytes, uploads them under the job id, and
// uploads a PNG thumbnail next to it. Thumbnail failures only log: the
// full-size archive is the deliverable.
func (a *ArtifactArchiver) Archive(ctx context.Context, backend *comfy.Client, artifact domain.Artifact, jobID string) (string, error) {
	data, err := backend.View(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact: %w", err)
	}

	ext := strings.ToLower(path.Ext(artifact.Filename))
	if ext == "" {
		ext = ".png"
	}
	key := "backgrounds/" + jobID + ext

	if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentTypeFor(ext)); err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	if thumb, err := renderThumbnail(data); err != nil {
		logger.CtxWarn(ctx, "Thumbnail generation failed: %v", err)
	} else {
		thumbKey := "thumbnails/" + jobID + ".png"
		if err := a.store.Upload(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/png"); err != nil {
			logger.CtxWarn(ctx, "Thumbnail upload failed: %v", err)
		}
	}

	return a.store.GetURL(key), nil
}

// renderThumbnail decodes the artifact (png, jpeg, or webp) and scales it
// to the preview width with bilinear interpolation.
func renderThumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("artifact image has empty bounds")
	}
	height := bounds.Dy() * thumbnailWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
