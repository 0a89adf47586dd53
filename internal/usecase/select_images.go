package usecases

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"downsizer/internal/domain/entities"
)

// SelectImages отбирает изображения-кандидаты из ppt/media рабочей
// директории: имя должно совпасть с glob-шаблоном (если задан),
// а размер файла превысить порог
func SelectImages(workDir string, config *entities.DownsizeConfig) ([]string, error) {
	mediaDir := filepath.Join(workDir, "ppt", "media")
	matches, err := filepath.Glob(filepath.Join(mediaDir, "image*"))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска медиафайлов: %w", err)
	}

	var selected []string
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		ok, err := matchesFilters(filepath.Base(path), info.Size(), config)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, path)
		}
	}
	return selected, nil
}

// matchesFilters проверяет запись против фильтров отбора
func matchesFilters(baseName string, size int64, config *entities.DownsizeConfig) (bool, error) {
	// Порог 0 отбирает все записи, прошедшие glob
	if config.FsizeFilter > 0 && size <= config.FsizeFilter {
		return false, nil
	}
	if config.FnameFilter != "" {
		// Как fnmatch: без учета регистра, *.tiff ловит и *.TIFF
		matched, err := filepath.Match(strings.ToLower(config.FnameFilter), strings.ToLower(baseName))
		if err != nil {
			return false, fmt.Errorf("некорректный glob-шаблон %q: %w", config.FnameFilter, err)
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
