package converter

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gen2brain/avif"
	"go.uber.org/zap/zaptest"
)

// createTestPNG writes an opaque red PNG with a transparent block in the
// top-left corner (transparentSize x transparentSize pixels).
func createTestPNG(t *testing.T, path string, width, height, transparentSize int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < transparentSize && y < transparentSize {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{200, 30, 30, 255})
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

// createTestJPEG writes a uniformly colored JPEG.
func createTestJPEG(t *testing.T, path string, width, height int, fill color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func decodeAVIF(t *testing.T, path string) image.Image {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	img, err := avif.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode output as AVIF: %v", err)
	}
	return img
}

func pixelAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestConverter_Transcode_PreserveAlpha(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.png")
	outputPath := filepath.Join(tmpDir, "output.avif")

	createTestPNG(t, inputPath, 100, 100, 20)

	if err := converter.Transcode(inputPath, outputPath, 90, true); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	img := decodeAVIF(t, outputPath)
	if p := pixelAt(img, 5, 5); p.A >= 255 {
		t.Errorf("Expected transparent corner to keep alpha < 255, got %d", p.A)
	}
	if p := pixelAt(img, 60, 60); p.A != 255 {
		t.Errorf("Expected opaque region to stay opaque, got alpha %d", p.A)
	}
}

func TestConverter_Transcode_FlattenAlpha(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.png")
	outputPath := filepath.Join(tmpDir, "output.avif")

	createTestPNG(t, inputPath, 100, 100, 20)

	if err := converter.Transcode(inputPath, outputPath, 75, false); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	img := decodeAVIF(t, outputPath)

	// The formerly transparent corner must be composited onto white.
	p := pixelAt(img, 5, 5)
	if p.A != 255 {
		t.Errorf("Expected fully opaque output, got alpha %d", p.A)
	}
	if p.R < 230 || p.G < 230 || p.B < 230 {
		t.Errorf("Expected transparent corner flattened to white, got %+v", p)
	}
}

func TestConverter_Transcode_OpaqueJPEG(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.jpg")
	outputPath := filepath.Join(tmpDir, "output.avif")

	fill := color.RGBA{128, 64, 32, 255}
	createTestJPEG(t, inputPath, 64, 64, fill)

	if err := converter.Transcode(inputPath, outputPath, 75, false); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	img := decodeAVIF(t, outputPath)
	p := pixelAt(img, 32, 32)
	if p.A != 255 {
		t.Errorf("Expected opaque output, got alpha %d", p.A)
	}

	tolerance := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			d = -d
		}
		return d
	}
	if tolerance(p.R, fill.R) > 25 || tolerance(p.G, fill.G) > 25 || tolerance(p.B, fill.B) > 25 {
		t.Errorf("Expected visible RGB close to %+v, got %+v", fill, p)
	}
}

func TestConverter_Transcode_CreatesParentDirs(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.jpg")
	outputPath := filepath.Join(tmpDir, "nested", "deeper", "output.avif")

	createTestJPEG(t, inputPath, 32, 32, color.RGBA{10, 20, 30, 255})

	if err := converter.Transcode(inputPath, outputPath, 85, false); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("Output file was not created: %v", err)
	}
}

func TestConverter_Transcode_InvalidInputPath(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	outputPath := filepath.Join(t.TempDir(), "output.avif")
	if err := converter.Transcode("/nonexistent/path.png", outputPath, 85, true); err == nil {
		t.Fatal("Expected error for non-existent input file, got nil")
	}
}

func TestConverter_Transcode_CorruptSource(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "corrupt.jpg")
	outputPath := filepath.Join(tmpDir, "output.avif")

	if err := os.WriteFile(inputPath, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if err := converter.Transcode(inputPath, outputPath, 85, false); err == nil {
		t.Fatal("Expected error for corrupt input, got nil")
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("Failed transcode must not leave a target file")
	}
}

func TestConverter_Transcode_ZeroByteSource(t *testing.T) {
	converter := NewConverter(zaptest.NewLogger(t))

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "empty.png")
	outputPath := filepath.Join(tmpDir, "output.avif")

	if err := os.WriteFile(inputPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to write empty file: %v", err)
	}

	if err := converter.Transcode(inputPath, outputPath, 85, true); err == nil {
		t.Fatal("Expected error for zero-byte input, got nil")
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("Failed transcode must not leave a target file")
	}
}
