package repositories

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystemRepository реализация репозитория для работы с файловой системой
type FileSystemRepository struct{}

// NewFileSystemRepository создает новый репозиторий файловой системы
func NewFileSystemRepository() *FileSystemRepository {
	return &FileSystemRepository{}
}

// GetFileSize возвращает размер файла в байтах
func (r *FileSystemRepository) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// FileExists проверяет существование файла
func (r *FileSystemRepository) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ListPresentationFiles возвращает список pptx файлов в директории и подпапках.
// Результаты предыдущих запусков (*.downsized.pptx) пропускаются, иначе
// повторный запуск обрабатывал бы собственный вывод.
func (r *FileSystemRepository) ListPresentationFiles(directory string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, ".pptx") || strings.HasSuffix(name, ".downsized.pptx") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
