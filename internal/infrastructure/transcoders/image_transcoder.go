package transcoders

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// Регистрация декодеров: pptx встречается с любым из этих форматов внутри ppt/media
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"

	"downsizer/internal/domain/entities"
)

// ImageTranscoder реализация перекодировщика изображений
type ImageTranscoder struct{}

// NewImageTranscoder создает новый перекодировщик изображений
func NewImageTranscoder() *ImageTranscoder {
	return &ImageTranscoder{}
}

// Transcode перекодирует одно изображение согласно конфигурации:
// декодирует, при необходимости уменьшает на целочисленный коэффициент,
// сводит прозрачность на цвет заливки и кодирует в целевой формат.
// Результат заменяет исходный файл (расширение может измениться).
func (t *ImageTranscoder) Transcode(imagePath string, config *entities.DownsizeConfig) (*entities.TranscodeResult, error) {
	result := &entities.TranscodeResult{
		OldName:         filepath.Base(imagePath),
		DownscaleFactor: 1,
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		result.Error = fmt.Errorf("не удалось получить информацию о файле %s: %w", imagePath, err)
		return result, result.Error
	}
	result.OriginalSize = info.Size()

	src, err := os.Open(imagePath)
	if err != nil {
		result.Error = fmt.Errorf("не удалось открыть файл %s: %w", imagePath, err)
		return result, result.Error
	}

	img, srcFormat, err := image.Decode(src)
	src.Close()
	if err != nil {
		result.Error = fmt.Errorf("не удалось декодировать изображение %s: %w", imagePath, err)
		return result, result.Error
	}
	result.OldFormat = srcFormat

	// Исходный JPEG остается JPEG независимо от целевого формата:
	// перегон уже сжатого с потерями файла в PNG только раздувает его
	targetFormat := config.ConvertTo
	if srcFormat == "jpeg" {
		targetFormat = "jpeg"
	}
	result.NewFormat = targetFormat

	// Целочисленный коэффициент уменьшения, обе стороны делятся на одно k
	bounds := img.Bounds()
	factor := entities.DownscaleFactor(bounds.Dx(), bounds.Dy(), config.ImgMaxSize)
	if factor > 1 {
		img = resize.Resize(uint(bounds.Dx()/factor), uint(bounds.Dy()/factor), img, resize.NearestNeighbor)
		result.DownscaleFactor = factor
	}
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()

	// Сведение прозрачности: JPEG не хранит альфа-канал,
	// для явного режима RGB тоже убираем прозрачность
	mode := config.ImgMode
	if mode == "" && targetFormat == "jpeg" {
		mode = "RGB"
	}
	if strings.EqualFold(mode, "RGB") && hasAlpha(img) {
		fill, err := ParseFillColor(config.FillColor)
		if err != nil {
			result.Error = err
			return result, result.Error
		}
		img = flatten(img, fill)
	}

	outputPath := targetPath(imagePath, srcFormat, targetFormat)
	result.NewName = filepath.Base(outputPath)

	if err := t.encode(img, outputPath, targetFormat, config); err != nil {
		result.Error = err
		return result, result.Error
	}

	// Исходник с другим расширением больше не нужен
	if outputPath != imagePath {
		if err := os.Remove(imagePath); err != nil {
			result.Error = fmt.Errorf("не удалось удалить исходный файл %s: %w", imagePath, err)
			return result, result.Error
		}
	}

	newInfo, err := os.Stat(outputPath)
	if err != nil {
		result.Error = fmt.Errorf("не удалось получить информацию о результате %s: %w", outputPath, err)
		return result, result.Error
	}
	result.NewSize = newInfo.Size()
	result.Success = true
	return result, nil
}

// encode кодирует изображение во временный файл и заменяет им целевой путь
func (t *ImageTranscoder) encode(img image.Image, outputPath, format string, config *entities.DownsizeConfig) error {
	tmpPath := outputPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}

	switch format {
	case "jpeg":
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: config.Quality})
	case "png":
		level := png.DefaultCompression
		if config.Optimize {
			level = png.BestCompression
		}
		encoder := &png.Encoder{CompressionLevel: level}
		err = encoder.Encode(out, img)
	default:
		err = entities.ErrInvalidFormat
	}

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось закодировать изображение: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось переименовать временный файл: %w", err)
	}
	return nil
}

// targetPath выбирает итоговый путь файла: JPEG сохраняет исходное имя
// (включая расширение .jpg), остальные получают расширение целевого формата
func targetPath(imagePath, srcFormat, targetFormat string) string {
	ext := strings.ToLower(filepath.Ext(imagePath))
	if srcFormat == "jpeg" && (ext == ".jpg" || ext == ".jpeg") {
		return imagePath
	}
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return base + "." + targetFormat
}

// hasAlpha проверяет наличие прозрачных пикселей
func hasAlpha(img image.Image) bool {
	if opaque, ok := img.(interface{ Opaque() bool }); ok {
		return !opaque.Opaque()
	}
	switch img.ColorModel() {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}

// flatten сводит изображение с прозрачностью на непрозрачный фон
func flatten(img image.Image, fill color.Color) image.Image {
	bounds := img.Bounds()
	background := image.NewRGBA(bounds)
	draw.Draw(background, bounds, image.NewUniform(fill), image.Point{}, draw.Src)
	draw.Draw(background, bounds, img, bounds.Min, draw.Over)
	return background
}

// ParseFillColor разбирает цвет заливки в формате '#rrggbb'.
// Пустая строка означает белый фон.
func ParseFillColor(s string) (color.Color, error) {
	if s == "" {
		return color.White, nil
	}
	if len(s) != 7 || s[0] != '#' {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidFillColor, s)
	}
	value, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidFillColor, s)
	}
	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xff,
	}, nil
}
