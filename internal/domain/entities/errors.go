package entities

import "errors"

// Доменные ошибки
var (
	ErrFileNotFound          = errors.New("файл не найден")
	ErrInvalidQuality        = errors.New("качество JPEG должно быть от 1 до 100")
	ErrInvalidFormat         = errors.New("целевой формат должен быть 'png' или 'jpeg'")
	ErrInvalidOnError        = errors.New("политика on_error должна быть 'continue' или 'raise'")
	ErrInvalidCompressMethod = errors.New("метод сжатия архива должен быть 'deflate' или 'store'")
	ErrInvalidImgMaxSize     = errors.New("максимальный размер изображения не может быть отрицательным")
	ErrInvalidFsizeFilter    = errors.New("порог размера файла не может быть отрицательным")
	ErrInvalidImgMode        = errors.New("поддерживается только цветовой режим 'RGB'")
	ErrInvalidFillColor      = errors.New("цвет заливки должен иметь формат '#rrggbb'")
	ErrInvalidByteSize       = errors.New("размер должен быть числом")
	ErrOutputExists          = errors.New("выходной файл уже существует")
	ErrNoFilesFound          = errors.New("pptx файлы не найдены")
)
