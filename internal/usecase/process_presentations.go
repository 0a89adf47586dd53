package usecases

import (
	"fmt"
	"path/filepath"

	"downsizer/internal/domain/entities"
	"downsizer/internal/domain/repositories"
)

// ProcessPresentationsUseCase сценарий обработки входного пути: одиночный
// pptx файл либо директория со всеми найденными презентациями
type ProcessPresentationsUseCase struct {
	downsizer *DownsizePresentationUseCase
	fileRepo  repositories.FileRepository
	logger    repositories.Logger
}

// NewProcessPresentationsUseCase создает новый сценарий пакетной обработки
func NewProcessPresentationsUseCase(
	downsizer *DownsizePresentationUseCase,
	fileRepo repositories.FileRepository,
	logger repositories.Logger,
) *ProcessPresentationsUseCase {
	return &ProcessPresentationsUseCase{
		downsizer: downsizer,
		fileRepo:  fileRepo,
		logger:    logger,
	}
}

// BatchResult результат пакетной обработки директории
type BatchResult struct {
	TotalFiles   int
	SuccessCount int
	FailedCount  int
	Results      []*entities.DownsizeResult
	Errors       []error
}

// TotalSaved возвращает суммарную экономию по всем успешным файлам
func (r *BatchResult) TotalSaved() int64 {
	var saved int64
	for _, res := range r.Results {
		saved += res.SavedSpace
	}
	return saved
}

// ExecuteDirectory обрабатывает все презентации в директории по очереди.
// Файлы обрабатываются последовательно: перекодирование изображений и так
// занимает все ядра кодеком, а порядок вывода остается читаемым.
func (uc *ProcessPresentationsUseCase) ExecuteDirectory(directory string, config *entities.DownsizeConfig) (*BatchResult, error) {
	if !uc.fileRepo.FileExists(directory) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, directory)
	}

	files, err := uc.fileRepo.ListPresentationFiles(directory)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка презентаций: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoFilesFound, directory)
	}

	uc.logger.Info("Найдено презентаций: %d", len(files))

	result := &BatchResult{
		TotalFiles: len(files),
		Results:    make([]*entities.DownsizeResult, 0, len(files)),
	}

	for i, inputFile := range files {
		uc.logger.Info("[%d/%d] %s", i+1, len(files), filepath.Base(inputFile))

		fileResult, err := uc.downsizer.Execute(inputFile, config)
		if err != nil {
			// При политике raise пакет останавливается на первом сбое
			if config.OnError == entities.OnErrorRaise {
				return result, fmt.Errorf("ошибка обработки %s: %w", inputFile, err)
			}
			result.Errors = append(result.Errors, fmt.Errorf("ошибка обработки %s: %w", inputFile, err))
			result.FailedCount++
			uc.logger.Error("Не удалось обработать %s: %v", inputFile, err)
			continue
		}

		result.Results = append(result.Results, fileResult)
		result.SuccessCount++
	}

	uc.logger.Info("Пакетная обработка завершена. Всего: %d, Успешно: %d, Ошибок: %d",
		result.TotalFiles, result.SuccessCount, result.FailedCount)

	return result, nil
}
