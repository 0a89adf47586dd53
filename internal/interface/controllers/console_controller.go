package controllers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"downsizer/internal/domain/entities"
	usecases "downsizer/internal/usecase"
)

// ConsoleController контроллер консольного режима: интерактивные
// подтверждения и вывод итоговой статистики
type ConsoleController struct {
	reader *bufio.Reader
}

// NewConsoleController создает новый консольный контроллер
func NewConsoleController() *ConsoleController {
	return &ConsoleController{
		reader: bufio.NewReader(os.Stdin),
	}
}

// ConfirmOverwrite спрашивает разрешение перезаписать существующий файл
func (c *ConsoleController) ConfirmOverwrite(path string) bool {
	fmt.Printf("⚠️  Файл %s уже существует. Перезаписать? [y/N]: ", path)

	input, err := c.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	switch answer {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// WaitBeforeZip приостанавливает обработку: рабочая директория открыта
// для ручных правок, упаковка продолжится после нажатия Enter
func (c *ConsoleController) WaitBeforeZip(workDir string) {
	fmt.Printf("\n⏸️  Распакованная презентация находится в: %s\n", workDir)
	fmt.Print("Внесите правки и нажмите Enter для упаковки... ")
	c.reader.ReadString('\n')
	fmt.Println()
}

// ShowResult показывает итоговую статистику обработки одной презентации
func (c *ConsoleController) ShowResult(result *entities.DownsizeResult) {
	fmt.Println("\n📊 Результаты обработки:")
	fmt.Printf("Исходный размер: %.2f MB\n", float64(result.OriginalSize)/1024/1024)
	fmt.Printf("Новый размер: %.2f MB\n", float64(result.NewSize)/1024/1024)
	fmt.Printf("Сжатие: %.1f%%\n", result.CompressionRatio)
	fmt.Printf("Перекодировано изображений: %d из %d\n", result.TranscodedImages, len(result.Images))
	if result.SkippedImages > 0 {
		fmt.Printf("⚠️  Пропущено изображений: %d\n", result.SkippedImages)
	}
	if result.OptimizedPDFs > 0 {
		fmt.Printf("Оптимизировано встроенных PDF: %d\n", result.OptimizedPDFs)
	}

	if result.IsEffective() {
		fmt.Printf("Сэкономлено: %.2f MB\n", float64(result.SavedSpace)/1024/1024)
	} else {
		fmt.Println("⚠️  Презентация не уменьшилась (возможно, изображения уже оптимальны)")
	}

	fmt.Printf("\n🎉 Готово! Результат сохранен как: %s\n", result.OutputFile)
}

// ShowBatchResult показывает итоговую статистику пакетной обработки
func (c *ConsoleController) ShowBatchResult(result *usecases.BatchResult) {
	fmt.Println("\n📊 Результаты пакетной обработки:")
	fmt.Printf("Всего презентаций: %d\n", result.TotalFiles)
	fmt.Printf("Успешно обработано: %d\n", result.SuccessCount)
	fmt.Printf("Ошибок: %d\n", result.FailedCount)

	for i, fileResult := range result.Results {
		fmt.Printf("\n[%d] %s: %.1f%%, сэкономлено %.2f MB\n",
			i+1, fileResult.InputFile, fileResult.CompressionRatio,
			float64(fileResult.SavedSpace)/1024/1024)
	}

	if len(result.Errors) > 0 {
		fmt.Println("\n❌ Ошибки:")
		for i, err := range result.Errors {
			fmt.Printf("[%d] %v\n", i+1, err)
		}
	}

	fmt.Printf("\n🎉 Обработка завершена! Уменьшено: %d/%d презентаций, сэкономлено %.2f MB\n",
		result.SuccessCount, result.TotalFiles, float64(result.TotalSaved())/1024/1024)
}
