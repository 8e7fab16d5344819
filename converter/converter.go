package converter

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"go.uber.org/zap"
)

type Converter struct {
	logger *zap.Logger
}

func NewConverter(logger *zap.Logger) *Converter {
	return &Converter{logger: logger}
}

// Transcode decodes the source image, applies the alpha policy, and
// encodes it as AVIF at the given quality. The target is written to a
// temp file and renamed, so a failed encode leaves no partial output.
func (c *Converter) Transcode(sourcePath, targetPath string, quality int, preserveAlpha bool) error {
	src, err := imaging.Open(sourcePath)
	if err != nil {
		c.logger.Error("Failed to open image",
			zap.String("path", sourcePath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to open image: %w", err)
	}

	var processedImage *image.NRGBA
	if preserveAlpha {
		// Clone normalizes any mode (palette, gray+alpha, ...) to NRGBA
		// without touching existing alpha values.
		processedImage = imaging.Clone(src)
	} else {
		processedImage = flattenOntoWhite(src)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		c.logger.Error("Failed to create target directory",
			zap.String("path", targetPath),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	if err := encodeAVIF(processedImage, targetPath, quality); err != nil {
		c.logger.Error("Failed to encode AVIF",
			zap.String("path", targetPath),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// flattenOntoWhite composites the image onto an opaque white background
// using its alpha channel as the blend mask. Sources without alpha come
// back unchanged apart from the NRGBA coercion.
func flattenOntoWhite(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, src, image.Pt(0, 0), 1.0)
}

func encodeAVIF(img *image.NRGBA, targetPath string, quality int) error {
	tmp, err := os.CreateTemp(filepath.Dir(targetPath), ".avif-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := avif.Encode(tmp, img, avif.Options{Quality: quality, QualityAlpha: quality}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode AVIF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), targetPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move temp file into place: %w", err)
	}
	return nil
}
