package entities

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Политики обработки ошибок перекодирования
const (
	OnErrorContinue = "continue" // Пропустить изображение и продолжить
	OnErrorRaise    = "raise"    // Прервать обработку целиком
)

// Методы сжатия выходного архива
const (
	CompressDeflate = "deflate"
	CompressStore   = "store"
)

// DefaultOutputFormat шаблон имени выходного файла по умолчанию
const DefaultOutputFormat = "{fnroot}.downsized.pptx"

// DownsizeConfig представляет конфигурацию уменьшения презентации
type DownsizeConfig struct {
	// Отбор изображений
	FnameFilter string `yaml:"fname_filter"` // Glob-шаблон имени файла, например "*.tiff"
	FsizeFilter int64  `yaml:"fsize_filter"` // Порог размера файла в байтах (0 - отбирать все)
	ImgMaxSize  int    `yaml:"img_max_size"` // Максимальный размер стороны в пикселях (0 - не уменьшать)

	// Перекодирование
	ConvertTo string `yaml:"convert_to"` // Целевой формат: "png" или "jpeg"
	ImgMode   string `yaml:"img_mode"`   // Целевой цветовой режим, поддерживается только "RGB"
	FillColor string `yaml:"fill_color"` // Цвет заливки прозрачных областей, "#rrggbb"
	Quality   int    `yaml:"quality"`    // Качество JPEG (1-100)
	Optimize  bool   `yaml:"optimize"`   // Оптимизировать вывод (медленнее, но меньше)

	// Выходной архив
	OutputFormat   string `yaml:"output_format"`   // Шаблон имени: {fnroot}, {filename}
	Overwrite      bool   `yaml:"overwrite"`       // Перезаписывать существующий выходной файл
	CompressMethod string `yaml:"compress_method"` // Метод сжатия архива: deflate | store
	CompressLevel  int    `yaml:"compress_level"`  // Уровень deflate (1-9)
	WaitBeforeZip  bool   `yaml:"wait_before_zip"` // Пауза перед упаковкой для ручных правок

	// Поведение программы
	OnError             string `yaml:"on_error"`              // continue | raise
	OptimizeEmbeddedPDF bool   `yaml:"optimize_embedded_pdf"` // Оптимизировать встроенные PDF через pdfcpu
}

// NewDownsizeConfig создает конфигурацию по умолчанию
func NewDownsizeConfig() *DownsizeConfig {
	return &DownsizeConfig{
		FnameFilter:    "",
		FsizeFilter:    512 * 1024,
		ImgMaxSize:     2048,
		ConvertTo:      "png",
		ImgMode:        "",
		FillColor:      "#ffffff",
		Quality:        90,
		Optimize:       true,
		OutputFormat:   DefaultOutputFormat,
		Overwrite:      false,
		CompressMethod: CompressDeflate,
		CompressLevel:  6,
		WaitBeforeZip:  false,
		// 'raise' по умолчанию: инструмент переписывает документы пользователя,
		// наполовину обработанная презентация хуже, чем прерванный запуск
		OnError:             OnErrorRaise,
		OptimizeEmbeddedPDF: false,
	}
}

// Normalize приводит строковые поля к каноническому виду
func (c *DownsizeConfig) Normalize() {
	c.ConvertTo = strings.ToLower(strings.Trim(c.ConvertTo, "."))
	if c.ConvertTo == "jpg" {
		c.ConvertTo = "jpeg"
	}
	if c.ConvertTo == "" {
		c.ConvertTo = "png"
	}
	c.ImgMode = strings.ToUpper(strings.TrimSpace(c.ImgMode))
	// JPEG не поддерживает альфа-канал, режим RGB подразумевается
	if c.ImgMode == "" && c.ConvertTo == "jpeg" {
		c.ImgMode = "RGB"
	}
	c.OnError = strings.ToLower(strings.TrimSpace(c.OnError))
	c.CompressMethod = strings.ToLower(strings.TrimSpace(c.CompressMethod))
	if c.CompressMethod == "" {
		c.CompressMethod = CompressDeflate
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}

// Validate проверяет корректность конфигурации
func (c *DownsizeConfig) Validate() error {
	if c.ConvertTo != "png" && c.ConvertTo != "jpeg" {
		return ErrInvalidFormat
	}
	if c.Quality < 1 || c.Quality > 100 {
		return ErrInvalidQuality
	}
	// Реализовано только сведение в RGB, другие режимы молча не принимаем
	if c.ImgMode != "" && c.ImgMode != "RGB" {
		return ErrInvalidImgMode
	}
	if c.OnError != OnErrorContinue && c.OnError != OnErrorRaise {
		return ErrInvalidOnError
	}
	if c.CompressMethod != CompressDeflate && c.CompressMethod != CompressStore {
		return ErrInvalidCompressMethod
	}
	if c.ImgMaxSize < 0 {
		return ErrInvalidImgMaxSize
	}
	if c.FsizeFilter < 0 {
		return ErrInvalidFsizeFilter
	}
	if c.FillColor != "" {
		if len(c.FillColor) != 7 || c.FillColor[0] != '#' {
			return ErrInvalidFillColor
		}
		if _, err := strconv.ParseUint(c.FillColor[1:], 16, 32); err != nil {
			return ErrInvalidFillColor
		}
	}
	return nil
}

// OutputFileName формирует имя выходного файла по шаблону
func (c *DownsizeConfig) OutputFileName(inputPath string) string {
	ext := filepath.Ext(inputPath)
	root := strings.TrimSuffix(inputPath, ext)
	format := c.OutputFormat
	if format == "" {
		format = DefaultOutputFormat
	}
	name := strings.ReplaceAll(format, "{fnroot}", root)
	name = strings.ReplaceAll(name, "{filename}", inputPath)
	return name
}

// DownscaleFactor вычисляет целочисленный коэффициент уменьшения:
// наименьшее k, при котором max(width,height)/k <= maxSize.
// Дробный масштаб не используется, иначе пропорции меняются неравномерно.
func DownscaleFactor(width, height, maxSize int) int {
	if maxSize <= 0 {
		return 1
	}
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxSize {
		return 1
	}
	factor := longest / maxSize
	if longest%maxSize != 0 {
		factor++
	}
	return factor
}

// ParseByteSize разбирает размер в байтах, включая экспоненциальную запись ("1e6")
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, s)
}
