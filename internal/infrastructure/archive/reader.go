package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"downsizer/internal/domain/entities"
)

// Repository реализация репозитория pptx архивов на основе zip.
// pptx (как и docx/xlsx) - это обычный zip контейнер, медиафайлы
// в нем лежат как обычные записи архива.
type Repository struct{}

// NewRepository создает новый репозиторий архивов
func NewRepository() *Repository {
	return &Repository{}
}

// Extract распаковывает архив в рабочую директорию и возвращает записи
// в исходном порядке следования, чтобы при упаковке воспроизвести его
func (r *Repository) Extract(archivePath, workDir string) ([]entities.ArchiveEntry, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть архив %s: %w", archivePath, err)
	}
	defer reader.Close()

	entries := make([]entities.ArchiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		destPath, err := safeDestination(workDir, file.Name)
		if err != nil {
			return nil, err
		}

		if err := extractFile(file, destPath); err != nil {
			return nil, fmt.Errorf("не удалось распаковать запись %s: %w", file.Name, err)
		}

		entries = append(entries, entities.ArchiveEntry{
			Name:   file.Name,
			Size:   int64(file.UncompressedSize64),
			Method: file.Method,
		})
	}

	return entries, nil
}

// safeDestination строит путь распаковки с защитой от zip-slip
func safeDestination(workDir, entryName string) (string, error) {
	destPath := filepath.Join(workDir, filepath.FromSlash(entryName))
	cleanRoot := filepath.Clean(workDir) + string(os.PathSeparator)
	if !strings.HasPrefix(destPath, cleanRoot) {
		return "", fmt.Errorf("недопустимый путь записи архива: %s", entryName)
	}
	return destPath, nil
}

// extractFile распаковывает одну запись архива на диск
func extractFile(file *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
