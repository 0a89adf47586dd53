package entities

// ArchiveEntry представляет запись внутри pptx архива
type ArchiveEntry struct {
	Name   string // Путь внутри архива (с прямыми слэшами)
	Size   int64  // Размер в распакованном виде
	Method uint16 // Метод сжатия в исходном архиве
}

// TranscodeResult представляет результат перекодирования одного изображения
type TranscodeResult struct {
	OldName         string // Имя файла до перекодирования (без директории)
	NewName         string // Имя файла после перекодирования
	OldFormat       string // Обнаруженный исходный формат
	NewFormat       string // Формат после перекодирования
	Width           int    // Ширина после перекодирования
	Height          int    // Высота после перекодирования
	DownscaleFactor int    // Применённый коэффициент уменьшения (1 - без изменений)
	OriginalSize    int64
	NewSize         int64
	Success         bool
	Error           error
}

// Renamed сообщает, изменилось ли имя файла записи
func (tr *TranscodeResult) Renamed() bool {
	return tr.NewName != "" && tr.NewName != tr.OldName
}

// IsSmaller сообщает, стал ли файл меньше. Информационный признак:
// результат сохраняется и когда файл не уменьшился, поскольку уменьшение
// пиксельных размеров не зависит от сравнения байтов.
func (tr *TranscodeResult) IsSmaller() bool {
	return tr.Success && tr.NewSize < tr.OriginalSize
}

// DownsizeResult представляет итог обработки одной презентации
type DownsizeResult struct {
	InputFile         string
	OutputFile        string
	OriginalSize      int64
	NewSize           int64
	CompressionRatio  float64
	SavedSpace        int64
	Images            []*TranscodeResult
	TranscodedImages  int
	SkippedImages     int
	OptimizedPDFs     int
	RewrittenRelFiles int
}

// CalculateCompressionRatio вычисляет коэффициент сжатия архива
func (dr *DownsizeResult) CalculateCompressionRatio() {
	if dr.OriginalSize > 0 {
		dr.CompressionRatio = ((float64(dr.OriginalSize) - float64(dr.NewSize)) / float64(dr.OriginalSize)) * 100
		dr.SavedSpace = dr.OriginalSize - dr.NewSize
	}
}

// AddImage добавляет результат перекодирования изображения
func (dr *DownsizeResult) AddImage(result *TranscodeResult) {
	dr.Images = append(dr.Images, result)
	if result.Success {
		dr.TranscodedImages++
	} else {
		dr.SkippedImages++
	}
}

// IsEffective проверяет, было ли уменьшение эффективным
func (dr *DownsizeResult) IsEffective() bool {
	return dr.CompressionRatio > 0
}
