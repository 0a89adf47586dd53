package main

import (
	"context"
	"os"
	"sync"

	"downsizer/internal/domain/entities"
	"downsizer/internal/domain/repositories"
	usecases "downsizer/internal/usecase"
)

// ApplicationProcessor обрабатывает команды приложения: по входному пути
// выбирает сценарий одиночного файла или пакетной обработки директории
type ApplicationProcessor struct {
	downsizeUseCase *usecases.DownsizePresentationUseCase
	batchUseCase    *usecases.ProcessPresentationsUseCase
	config          *entities.Config
	logger          repositories.Logger

	// Результат последнего запуска для консольного вывода
	lastResult      *entities.DownsizeResult
	lastBatchResult *usecases.BatchResult

	// Graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplicationProcessor создает новый процессор приложения
func NewApplicationProcessor(
	downsizeUseCase *usecases.DownsizePresentationUseCase,
	batchUseCase *usecases.ProcessPresentationsUseCase,
	config *entities.Config,
	logger repositories.Logger,
) *ApplicationProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	return &ApplicationProcessor{
		downsizeUseCase: downsizeUseCase,
		batchUseCase:    batchUseCase,
		config:          config,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// StartProcessing запускает обработку входного пути
func (p *ApplicationProcessor) StartProcessing() error {
	p.wg.Add(1)
	defer p.wg.Done()

	inputPath := p.config.Scanner.InputPath
	if inputPath == "" {
		p.logger.Error("Не указан входной файл или директория")
		return entities.ErrFileNotFound
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		p.logger.Error("Входной путь недоступен: %v", err)
		return err
	}

	if info.IsDir() {
		p.logger.Info("Пакетная обработка директории: %s", inputPath)
		result, err := p.batchUseCase.ExecuteDirectory(inputPath, &p.config.Downsize)
		p.lastBatchResult = result
		if err != nil {
			p.logger.Error("Ошибка пакетной обработки: %v", err)
			return err
		}
		p.logger.Success("Пакетная обработка завершена успешно")
		return nil
	}

	result, err := p.downsizeUseCase.Execute(inputPath, &p.config.Downsize)
	p.lastResult = result
	if err != nil {
		p.logger.Error("Ошибка обработки: %v", err)
		return err
	}
	p.logger.Success("Обработка завершена успешно")
	return nil
}

// Shutdown корректно завершает работу процессора
func (p *ApplicationProcessor) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
