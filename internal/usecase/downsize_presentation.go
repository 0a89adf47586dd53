package usecases

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"downsizer/internal/domain/entities"
	"downsizer/internal/domain/repositories"
)

// DownsizePresentationUseCase сценарий уменьшения одной презентации:
// распаковка, отбор изображений, перекодирование, правка связей,
// необязательная пауза и упаковка нового архива
type DownsizePresentationUseCase struct {
	archiveRepo      repositories.ArchiveRepository
	transcoder       repositories.ImageTranscoder
	pdfOptimizer     repositories.PDFOptimizer
	fileRepo         repositories.FileRepository
	prompter         repositories.Prompter
	logger           repositories.Logger
	progressReporter func(entities.ProcessingStatus)
}

// NewDownsizePresentationUseCase создает новый сценарий уменьшения презентации
func NewDownsizePresentationUseCase(
	archiveRepo repositories.ArchiveRepository,
	transcoder repositories.ImageTranscoder,
	pdfOptimizer repositories.PDFOptimizer,
	fileRepo repositories.FileRepository,
	logger repositories.Logger,
) *DownsizePresentationUseCase {
	return &DownsizePresentationUseCase{
		archiveRepo:  archiveRepo,
		transcoder:   transcoder,
		pdfOptimizer: pdfOptimizer,
		fileRepo:     fileRepo,
		logger:       logger,
	}
}

// SetPrompter устанавливает обработчик интерактивных подтверждений
func (uc *DownsizePresentationUseCase) SetPrompter(prompter repositories.Prompter) {
	uc.prompter = prompter
}

// SetProgressReporter устанавливает функцию для отчета о прогрессе
func (uc *DownsizePresentationUseCase) SetProgressReporter(reporter func(entities.ProcessingStatus)) {
	uc.progressReporter = reporter
}

// reportProgress отправляет обновление прогресса
func (uc *DownsizePresentationUseCase) reportProgress(status *entities.ProcessingStatus) {
	if uc.progressReporter != nil {
		uc.progressReporter(*status)
	}
}

// Execute выполняет уменьшение презентации и возвращает итоговую статистику
func (uc *DownsizePresentationUseCase) Execute(inputPath string, config *entities.DownsizeConfig) (*entities.DownsizeResult, error) {
	// Работаем с копией: нормализация не должна менять конфигурацию вызывающего
	cfg := *config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	if !uc.fileRepo.FileExists(inputPath) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, inputPath)
	}
	oldSize, err := uc.fileRepo.GetFileSize(inputPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	result := &entities.DownsizeResult{
		InputFile:    inputPath,
		OutputFile:   cfg.OutputFileName(inputPath),
		OriginalSize: oldSize,
	}

	status := entities.NewProcessingStatus(0)
	uc.logInfo("Уменьшение презентации %s (%.1f MB)...", inputPath, float64(oldSize)/1024/1024)
	uc.logDescribeFilters(&cfg)

	workDir, err := os.MkdirTemp("", "downsizer-")
	if err != nil {
		return nil, fmt.Errorf("не удалось создать рабочую директорию: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Фаза 1: распаковка (ошибка открытия архива фатальна)
	status.SetPhase(entities.PhaseExtracting, "Распаковка архива...")
	uc.reportProgress(status)
	uc.logDebug("Распаковка %s в %s...", inputPath, workDir)

	entries, err := uc.archiveRepo.Extract(inputPath, workDir)
	if err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}

	// Фаза 2: отбор изображений
	status.SetPhase(entities.PhaseSelecting, "Отбор изображений...")
	uc.reportProgress(status)

	candidates, err := SelectImages(workDir, &cfg)
	if err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}
	status.TotalImages = len(candidates)
	uc.logInfo("Найдено изображений для перекодирования: %d", len(candidates))

	// Фаза 3: перекодирование
	status.SetPhase(entities.PhaseTranscoding, "Перекодирование изображений...")
	uc.reportProgress(status)

	renames := make(map[string]string)
	for _, imagePath := range candidates {
		baseName := filepath.Base(imagePath)
		imgSize, _ := uc.fileRepo.GetFileSize(imagePath)
		status.SetCurrentFile(baseName, imgSize)
		uc.reportProgress(status)
		uc.logInfo("Перекодирование %s (%d kb)...", baseName, imgSize/1024)

		transcodeResult, err := uc.transcoder.Transcode(imagePath, &cfg)
		if err != nil {
			if cfg.OnError == entities.OnErrorRaise {
				status.Fail(err)
				uc.reportProgress(status)
				return nil, fmt.Errorf("ошибка перекодирования %s: %w", baseName, err)
			}
			uc.logWarning("Пропуск %s: %v", baseName, err)
		}
		if transcodeResult == nil {
			transcodeResult = &entities.TranscodeResult{OldName: baseName, Error: err}
		}

		result.AddImage(transcodeResult)
		status.AddResult(transcodeResult)
		uc.reportProgress(status)

		if transcodeResult.Success {
			uc.logInfo(" - Сохранено: %s (%d kb -> %d kb)",
				transcodeResult.NewName,
				transcodeResult.OriginalSize/1024,
				transcodeResult.NewSize/1024)
			if transcodeResult.DownscaleFactor > 1 {
				uc.logDebug(" - Уменьшение в %dx, до %dx%d",
					transcodeResult.DownscaleFactor, transcodeResult.Width, transcodeResult.Height)
			}
			if cfg.FsizeFilter > 0 && transcodeResult.NewSize > cfg.FsizeFilter {
				uc.logInfo(" - Внимание: размер %d kb все еще выше порога (%d kb)",
					transcodeResult.NewSize/1024, cfg.FsizeFilter/1024)
			}
			if transcodeResult.Renamed() {
				renames[transcodeResult.OldName] = transcodeResult.NewName
			}
		}
	}

	// Фаза 4: правка файлов связей и типов содержимого
	status.SetPhase(entities.PhaseFixingRels, "Правка файлов связей...")
	uc.reportProgress(status)

	rewritten, err := uc.rewriteRelationships(workDir, renames)
	if err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}
	result.RewrittenRelFiles = rewritten

	if err := ensureContentTypeDefaults(workDir, renames); err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}

	// Встроенные PDF (опционально)
	if cfg.OptimizeEmbeddedPDF && uc.pdfOptimizer != nil {
		if err := uc.optimizeEmbeddedPDFs(workDir, &cfg, result); err != nil {
			status.Fail(err)
			uc.reportProgress(status)
			return nil, err
		}
	}

	// Пауза для ручных правок рабочей директории перед упаковкой
	if cfg.WaitBeforeZip && uc.prompter != nil {
		status.SetPhase(entities.PhaseWaiting, "Ожидание ручных правок...")
		uc.reportProgress(status)
		uc.prompter.WaitBeforeZip(workDir)
	}

	// Проверка коллизии непосредственно перед записью
	if err := uc.checkOverwrite(result.OutputFile, &cfg); err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}

	// Фаза 5: упаковка
	status.SetPhase(entities.PhaseRepacking, "Упаковка архива...")
	uc.reportProgress(status)
	uc.logInfo("Создание нового pptx архива: %s", result.OutputFile)

	names := finalEntryNames(entries, workDir, renames)
	if err := uc.archiveRepo.Pack(workDir, result.OutputFile, names, &cfg); err != nil {
		status.Fail(err)
		uc.reportProgress(status)
		return nil, err
	}

	newSize, err := uc.fileRepo.GetFileSize(result.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о результате: %w", err)
	}
	result.NewSize = newSize
	result.CalculateCompressionRatio()

	status.Complete()
	uc.reportProgress(status)
	uc.logSuccess("Готово! Новый размер: %.1f MB (%.1f%% от исходного)",
		float64(newSize)/1024/1024, 100*float64(newSize)/float64(oldSize))

	return result, nil
}

// checkOverwrite проверяет коллизию выходного пути. Существующий файл
// молча не перезаписывается: нужен флаг overwrite или подтверждение.
func (uc *DownsizePresentationUseCase) checkOverwrite(outputPath string, config *entities.DownsizeConfig) error {
	if config.Overwrite || !uc.fileRepo.FileExists(outputPath) {
		return nil
	}
	if uc.prompter != nil && uc.prompter.ConfirmOverwrite(outputPath) {
		return nil
	}
	return fmt.Errorf("%w: %s", entities.ErrOutputExists, outputPath)
}

// rewriteRelationships заменяет переименованные медиафайлы во всех
// *.xml.rels файлах. Измененные файлы записываются с окончаниями \r\n,
// как их пишет сам PowerPoint.
func (uc *DownsizePresentationUseCase) rewriteRelationships(workDir string, renames map[string]string) (int, error) {
	if len(renames) == 0 {
		return 0, nil
	}

	var relFiles []string
	root := filepath.Join(workDir, "ppt")
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".xml.rels") {
			relFiles = append(relFiles, p)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка поиска файлов связей: %w", err)
	}

	count := 0
	for _, relPath := range relFiles {
		data, err := os.ReadFile(relPath)
		if err != nil {
			return count, fmt.Errorf("не удалось прочитать %s: %w", relPath, err)
		}

		text := string(data)
		changed := false
		for oldName, newName := range renames {
			// Заменяем только ссылки вида "../media/имя", чтобы не задеть
			// внешние ссылки с совпадающим именем файла
			oldRef := `"../media/` + oldName + `"`
			if strings.Contains(text, oldRef) {
				text = strings.ReplaceAll(text, oldRef, `"../media/`+newName+`"`)
				changed = true
			}
		}
		if !changed {
			continue
		}

		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\n", "\r\n")
		if err := os.WriteFile(relPath, []byte(text), 0644); err != nil {
			return count, fmt.Errorf("не удалось записать %s: %w", relPath, err)
		}
		count++
		uc.logDebug("Обновлены ссылки в %s", relPath)
	}

	uc.logInfo("Обновлено файлов связей: %d из %d", count, len(relFiles))
	return count, nil
}

// ensureContentTypeDefaults добавляет объявления расширений в
// [Content_Types].xml для новых форматов. Без записи для "jpeg"
// PowerPoint отказывается открывать конвертированную презентацию.
func ensureContentTypeDefaults(workDir string, renames map[string]string) error {
	mimeByExt := map[string]string{
		"png":  "image/png",
		"jpeg": "image/jpeg",
	}

	needed := make(map[string]bool)
	for _, newName := range renames {
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(newName)), ".")
		if _, ok := mimeByExt[ext]; ok {
			needed[ext] = true
		}
	}
	if len(needed) == 0 {
		return nil
	}

	ctPath := filepath.Join(workDir, "[Content_Types].xml")
	data, err := os.ReadFile(ctPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("не удалось прочитать типы содержимого: %w", err)
	}

	text := string(data)
	changed := false
	for ext := range needed {
		if strings.Contains(text, `Extension="`+ext+`"`) {
			continue
		}
		declaration := `<Default Extension="` + ext + `" ContentType="` + mimeByExt[ext] + `"/>`
		text = strings.Replace(text, "</Types>", declaration+"</Types>", 1)
		changed = true
	}
	if !changed {
		return nil
	}
	if err := os.WriteFile(ctPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("не удалось записать типы содержимого: %w", err)
	}
	return nil
}

// optimizeEmbeddedPDFs оптимизирует PDF файлы из ppt/embeddings
func (uc *DownsizePresentationUseCase) optimizeEmbeddedPDFs(workDir string, config *entities.DownsizeConfig, result *entities.DownsizeResult) error {
	embeddingsDir := filepath.Join(workDir, "ppt", "embeddings")
	dirEntries, err := os.ReadDir(embeddingsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения директории встроенных объектов: %w", err)
	}

	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfPath := filepath.Join(embeddingsDir, entry.Name())
		uc.logInfo("Оптимизация встроенного PDF: %s", entry.Name())

		optimizeResult, err := uc.pdfOptimizer.Optimize(pdfPath)
		if err != nil {
			if config.OnError == entities.OnErrorRaise {
				return fmt.Errorf("ошибка оптимизации %s: %w", entry.Name(), err)
			}
			uc.logWarning("Пропуск PDF %s: %v", entry.Name(), err)
			continue
		}
		result.OptimizedPDFs++
		uc.logInfo(" - %s: %d kb -> %d kb", entry.Name(),
			optimizeResult.OriginalSize/1024, optimizeResult.NewSize/1024)
	}
	return nil
}

// finalEntryNames строит порядок записей выходного архива: исходный
// порядок с учетом переименований, файлы, добавленные вручную во время
// паузы, идут в конец
func finalEntryNames(entries []entities.ArchiveEntry, workDir string, renames map[string]string) []string {
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		name := entry.Name
		dir, base := path.Split(name)
		if newBase, ok := renames[base]; ok && dir == "ppt/media/" {
			name = dir + newBase
		}
		names = append(names, name)
		seen[name] = true
	}

	var extras []string
	filepath.WalkDir(workDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return nil
		}
		name := filepath.ToSlash(rel)
		if !seen[name] {
			extras = append(extras, name)
		}
		return nil
	})
	sort.Strings(extras)

	return append(names, extras...)
}

// logDescribeFilters описывает действующие фильтры отбора
func (uc *DownsizePresentationUseCase) logDescribeFilters(config *entities.DownsizeConfig) {
	var parts []string
	if config.FsizeFilter > 0 {
		parts = append(parts, fmt.Sprintf("больше %.1f kB", float64(config.FsizeFilter)/1024))
	}
	if config.ImgMaxSize > 0 {
		parts = append(parts, fmt.Sprintf("крупнее %d пикселей", config.ImgMaxSize))
	}
	if config.FnameFilter != "" {
		parts = append(parts, fmt.Sprintf("с именем по шаблону %q", config.FnameFilter))
	}
	if len(parts) > 0 {
		uc.logInfo("Перекодируются изображения: %s", strings.Join(parts, ", "))
	}
}

// Методы для логирования
func (uc *DownsizePresentationUseCase) logDebug(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Debug(format, args...)
	}
}

func (uc *DownsizePresentationUseCase) logInfo(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Info(format, args...)
	}
}

func (uc *DownsizePresentationUseCase) logWarning(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Warning(format, args...)
	}
}

func (uc *DownsizePresentationUseCase) logSuccess(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Success(format, args...)
	}
}
