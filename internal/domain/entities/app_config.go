package entities

import "time"

// Config представляет конфигурацию приложения
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	Downsize DownsizeConfig `yaml:"downsize"`
	Output   OutputConfig   `yaml:"output"`
	UI       UIConfig       `yaml:"ui"`
}

// ScannerConfig настройки входных данных
type ScannerConfig struct {
	// Путь к pptx файлу или директории с pptx файлами.
	// Аргумент командной строки имеет приоритет над этим полем.
	InputPath string `yaml:"input_path"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	Verbose      int    `yaml:"verbose"` // Уровень подробности консольного вывода (0-5)
	LogToFile    bool   `yaml:"log_to_file"`
	LogFileName  string `yaml:"log_file_name"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
}

// UIConfig настройки интерфейса
type UIConfig struct {
	UseTUI    bool `yaml:"use_tui"`
	AutoStart bool `yaml:"auto_start"`
}

// NewConfig создает конфигурацию приложения по умолчанию
func NewConfig() *Config {
	return &Config{
		Scanner:  ScannerConfig{InputPath: ""},
		Downsize: *NewDownsizeConfig(),
		Output: OutputConfig{
			Verbose:      2,
			LogToFile:    true,
			LogFileName:  "downsizer.log",
			LogMaxSizeMB: 10,
		},
		UI: UIConfig{
			UseTUI:    false,
			AutoStart: false,
		},
	}
}

// ProcessingStatus статус обработки презентации
type ProcessingStatus struct {
	// Текущая фаза обработки
	Phase ProcessingPhase

	// Информация о текущем изображении
	CurrentFile     string
	CurrentFileSize int64

	// Общая статистика по изображениям
	TotalImages      int
	ProcessedImages  int
	TranscodedImages int
	FailedImages     int

	// Прогресс
	Progress float64

	// Статистика размеров
	TotalOriginalSize int64
	TotalNewSize      int64
	TotalSavedSpace   int64

	// Последний результат
	LastResult *TranscodeResult

	// Время выполнения
	StartTime   time.Time
	ElapsedTime time.Duration

	// Состояние
	IsComplete bool
	Error      error

	// Сообщение для UI
	Message string
}

// ProcessingPhase фаза обработки
type ProcessingPhase int

const (
	PhaseInitializing ProcessingPhase = iota
	PhaseExtracting
	PhaseSelecting
	PhaseTranscoding
	PhaseFixingRels
	PhaseWaiting
	PhaseRepacking
	PhaseCompleted
	PhaseFailed
)

// String возвращает название фазы
func (phase ProcessingPhase) String() string {
	switch phase {
	case PhaseInitializing:
		return "Инициализация"
	case PhaseExtracting:
		return "Распаковка архива"
	case PhaseSelecting:
		return "Отбор изображений"
	case PhaseTranscoding:
		return "Перекодирование изображений"
	case PhaseFixingRels:
		return "Правка файлов связей"
	case PhaseWaiting:
		return "Ожидание ручных правок"
	case PhaseRepacking:
		return "Упаковка архива"
	case PhaseCompleted:
		return "Завершено"
	case PhaseFailed:
		return "Ошибка"
	default:
		return "Неизвестно"
	}
}

// UIScreen типы экранов UI
type UIScreen int

const (
	UIScreenMenu UIScreen = iota
	UIScreenConfig
	UIScreenProcessing
)

// NewProcessingStatus создает новый статус обработки
func NewProcessingStatus(totalImages int) *ProcessingStatus {
	return &ProcessingStatus{
		Phase:       PhaseInitializing,
		TotalImages: totalImages,
		StartTime:   time.Now(),
	}
}

// UpdateProgress обновляет прогресс обработки
func (ps *ProcessingStatus) UpdateProgress() {
	if ps.TotalImages > 0 {
		ps.Progress = float64(ps.ProcessedImages) / float64(ps.TotalImages) * 100
	}
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// AddResult добавляет результат перекодирования изображения
func (ps *ProcessingStatus) AddResult(result *TranscodeResult) {
	ps.ProcessedImages++
	ps.LastResult = result

	if result.Success && result.Error == nil {
		ps.TranscodedImages++
		ps.TotalOriginalSize += result.OriginalSize
		ps.TotalNewSize += result.NewSize
		ps.TotalSavedSpace = ps.TotalOriginalSize - ps.TotalNewSize
	} else {
		ps.FailedImages++
	}

	ps.UpdateProgress()
}

// SetPhase устанавливает фазу обработки
func (ps *ProcessingStatus) SetPhase(phase ProcessingPhase, message string) {
	ps.Phase = phase
	ps.Message = message
}

// SetCurrentFile устанавливает текущее обрабатываемое изображение
func (ps *ProcessingStatus) SetCurrentFile(filePath string, size int64) {
	ps.CurrentFile = filePath
	ps.CurrentFileSize = size
}

// Complete завершает обработку
func (ps *ProcessingStatus) Complete() {
	ps.IsComplete = true
	ps.Phase = PhaseCompleted
	ps.Progress = 100
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// Fail отмечает обработку как неудачную
func (ps *ProcessingStatus) Fail(err error) {
	ps.IsComplete = true
	ps.Phase = PhaseFailed
	ps.Error = err
	ps.ElapsedTime = time.Since(ps.StartTime)
}

// FormatElapsedTime форматирует время выполнения
func (ps *ProcessingStatus) FormatElapsedTime() string {
	duration := ps.ElapsedTime
	if duration < time.Second {
		return "< 1 сек"
	}
	return duration.Round(time.Second).String()
}
