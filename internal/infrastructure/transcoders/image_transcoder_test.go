package transcoders_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"downsizer/internal/domain/entities"
	"downsizer/internal/infrastructure/transcoders"
)

// makeNoiseImage создает изображение с шумом: оно плохо сжимается в PNG,
// поэтому разница между форматами и качеством хорошо видна в тестах
func makeNoiseImage(width, height int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: img.RGBAAt(x, y).R,
				G: img.RGBAAt(x, y).G,
				B: img.RGBAAt(x, y).B,
				A: 0xff,
			})
		}
	}
	return img
}

func savePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
}

func saveJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
}

func saveTIFF(t *testing.T, path string, img image.Image) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer out.Close()
	if err := tiff.Encode(out, img, nil); err != nil {
		t.Fatalf("Failed to encode tiff: %v", err)
	}
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	src, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer src.Close()
	img, format, err := image.Decode(src)
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	return img, format
}

func TestTranscode_DownscaleByIntegerFactor(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.png")
	savePNG(t, imagePath, makeNoiseImage(600, 400))

	config := entities.NewDownsizeConfig()
	config.ImgMaxSize = 256
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	// ceil(600/256) = 3, стороны делятся на один коэффициент
	if result.DownscaleFactor != 3 {
		t.Errorf("Expected downscale factor 3, got %d", result.DownscaleFactor)
	}
	if result.Width != 200 || result.Height != 133 {
		t.Errorf("Expected 200x133, got %dx%d", result.Width, result.Height)
	}

	img, format := decodeFile(t, imagePath)
	if format != "png" {
		t.Errorf("Expected png output, got %s", format)
	}
	if img.Bounds().Dx() > 256 || img.Bounds().Dy() > 256 {
		t.Errorf("Output dimensions %dx%d exceed limit 256", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestTranscode_ZeroMaxSizeDisablesDownscale(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.png")
	savePNG(t, imagePath, makeNoiseImage(300, 200))

	config := entities.NewDownsizeConfig()
	config.ImgMaxSize = 0
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	if result.DownscaleFactor != 1 {
		t.Errorf("Expected downscale factor 1, got %d", result.DownscaleFactor)
	}
	if result.Width != 300 || result.Height != 200 {
		t.Errorf("Expected 300x200, got %dx%d", result.Width, result.Height)
	}
}

func TestTranscode_JPEGStaysJPEG(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.jpg")
	saveJPEG(t, imagePath, makeNoiseImage(100, 100))

	config := entities.NewDownsizeConfig()
	config.ConvertTo = "png"
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	if result.NewFormat != "jpeg" {
		t.Errorf("Expected jpeg output format, got %s", result.NewFormat)
	}
	if result.NewName != "image1.jpg" {
		t.Errorf("Expected name image1.jpg preserved, got %s", result.NewName)
	}
	if result.Renamed() {
		t.Error("JPEG input must not be renamed")
	}

	_, format := decodeFile(t, imagePath)
	if format != "jpeg" {
		t.Errorf("Expected jpeg on disk, got %s", format)
	}
}

func TestTranscode_TIFFConvertedToPNG(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.tiff")
	saveTIFF(t, imagePath, makeNoiseImage(128, 96))

	config := entities.NewDownsizeConfig()
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	if result.OldFormat != "tiff" {
		t.Errorf("Expected detected format tiff, got %s", result.OldFormat)
	}
	if result.NewName != "image1.png" {
		t.Errorf("Expected image1.png, got %s", result.NewName)
	}
	if !result.Renamed() {
		t.Error("Expected rename for format conversion")
	}

	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Error("Original tiff file must be removed after conversion")
	}
	if _, err := os.Stat(filepath.Join(dir, "image1.png")); err != nil {
		t.Errorf("Converted png missing: %v", err)
	}
}

func TestTranscode_FlattensAlphaOnFillColor(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.png")

	// Полностью прозрачное изображение должно стать цветом заливки
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	savePNG(t, imagePath, img)

	config := entities.NewDownsizeConfig()
	config.ConvertTo = "jpeg"
	config.FillColor = "#ff0000"
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if result.NewFormat != "jpeg" {
		t.Fatalf("Expected jpeg output, got %s", result.NewFormat)
	}

	out, _ := decodeFile(t, filepath.Join(dir, "image1.jpeg"))
	r, g, b, _ := out.At(16, 16).RGBA()
	// JPEG с потерями, допускаем небольшое отклонение
	if r>>8 < 230 || g>>8 > 40 || b>>8 > 40 {
		t.Errorf("Expected red fill, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestTranscode_JPEGQualityReducesSize(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.png")
	savePNG(t, imagePath, makeNoiseImage(256, 256))

	config := entities.NewDownsizeConfig()
	config.ConvertTo = "jpeg"
	config.Quality = 50
	config.ImgMaxSize = 0
	config.Normalize()

	transcoder := transcoders.NewImageTranscoder()
	result, err := transcoder.Transcode(imagePath, config)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	if !result.IsSmaller() {
		t.Errorf("JPEG q=50 from noisy PNG must be smaller: %d -> %d bytes",
			result.OriginalSize, result.NewSize)
	}
}

func TestTranscode_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image1.png")
	if err := os.WriteFile(imagePath, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	transcoder := transcoders.NewImageTranscoder()
	config := entities.NewDownsizeConfig()
	config.Normalize()

	result, err := transcoder.Transcode(imagePath, config)
	if err == nil {
		t.Fatal("Expected decode error")
	}
	if result.Success {
		t.Error("Failed transcode must not be marked successful")
	}

	// Оригинал остается на месте для политики continue
	if _, statErr := os.Stat(imagePath); statErr != nil {
		t.Errorf("Original file must survive a failed transcode: %v", statErr)
	}
}

func TestParseFillColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#000000", color.RGBA{0x00, 0x00, 0x00, 0xff}, false},
		{"#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 0xff}, false},
		{"ffffff", color.RGBA{}, true},
		{"#fff", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := transcoders.ParseFillColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFillColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseFillColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	// Пустая строка означает белый фон
	got, err := transcoders.ParseFillColor("")
	if err != nil {
		t.Fatalf("ParseFillColor(\"\") error = %v", err)
	}
	if got != color.White {
		t.Errorf("ParseFillColor(\"\") = %v, want white", got)
	}
}
