package repositories

import (
	"downsizer/internal/domain/entities"
)

// ArchiveRepository интерфейс для распаковки и упаковки pptx архивов
type ArchiveRepository interface {
	// Extract распаковывает архив в рабочую директорию и возвращает
	// записи в исходном порядке следования
	Extract(archivePath, workDir string) ([]entities.ArchiveEntry, error)
	// Pack собирает новый архив из рабочей директории, упаковывая
	// перечисленные записи в заданном порядке
	Pack(workDir, outputPath string, names []string, config *entities.DownsizeConfig) error
}

// ImageTranscoder интерфейс для перекодирования изображений
type ImageTranscoder interface {
	Transcode(imagePath string, config *entities.DownsizeConfig) (*entities.TranscodeResult, error)
}

// PDFOptimizer интерфейс для оптимизации встроенных PDF файлов
type PDFOptimizer interface {
	Optimize(pdfPath string) (*entities.TranscodeResult, error)
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	GetFileSize(path string) (int64, error)
	FileExists(path string) bool
	ListPresentationFiles(directory string) ([]string, error)
}

// Prompter интерфейс для интерактивных подтверждений
type Prompter interface {
	// ConfirmOverwrite спрашивает разрешение перезаписать существующий выходной файл
	ConfirmOverwrite(path string) bool
	// WaitBeforeZip дает возможность внести ручные правки перед упаковкой
	WaitBeforeZip(workDir string)
}
