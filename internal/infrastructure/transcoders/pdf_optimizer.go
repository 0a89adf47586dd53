package transcoders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"downsizer/internal/domain/entities"
)

// PDFCPUOptimizer оптимизатор встроенных PDF на основе pdfcpu.
// Презентации со вставленными PDF объектами хранят их в ppt/embeddings,
// оптимизация потоков там часто дает заметную экономию.
type PDFCPUOptimizer struct{}

// NewPDFCPUOptimizer создает новый pdfcpu оптимизатор
func NewPDFCPUOptimizer() *PDFCPUOptimizer {
	return &PDFCPUOptimizer{}
}

// Optimize оптимизирует PDF файл на месте. Если результат не меньше
// оригинала, оригинал сохраняется без изменений.
func (p *PDFCPUOptimizer) Optimize(pdfPath string) (*entities.TranscodeResult, error) {
	result := &entities.TranscodeResult{
		OldName:         filepath.Base(pdfPath),
		NewName:         filepath.Base(pdfPath),
		OldFormat:       "pdf",
		NewFormat:       "pdf",
		DownscaleFactor: 1,
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		result.Error = fmt.Errorf("не удалось получить информацию о файле %s: %w", pdfPath, err)
		return result, result.Error
	}
	result.OriginalSize = info.Size()

	tmpPath := pdfPath + ".tmp"
	if err := api.OptimizeFile(pdfPath, tmpPath, nil); err != nil {
		os.Remove(tmpPath)
		result.Error = fmt.Errorf("ошибка оптимизации pdfcpu: %w", err)
		return result, result.Error
	}

	tmpInfo, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		result.Error = fmt.Errorf("не удалось получить информацию о результате: %w", err)
		return result, result.Error
	}

	// Оптимизация не обязана уменьшать файл, тогда оставляем оригинал
	if tmpInfo.Size() >= result.OriginalSize {
		os.Remove(tmpPath)
		result.NewSize = result.OriginalSize
		result.Success = true
		return result, nil
	}

	if err := os.Rename(tmpPath, pdfPath); err != nil {
		os.Remove(tmpPath)
		result.Error = fmt.Errorf("не удалось заменить исходный PDF: %w", err)
		return result, result.Error
	}

	result.NewSize = tmpInfo.Size()
	result.Success = true
	return result, nil
}
