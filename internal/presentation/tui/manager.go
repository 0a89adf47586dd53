package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"downsizer/internal/domain/entities"
	"downsizer/internal/domain/repositories"
)

// Параметры интерфейса
const (
	MaxLogBufferSize   = 1000
	LogFlushInterval   = 50 * time.Millisecond
	ProgressBarWidth   = 40
	MaxFileNameLength  = 60
	MaxFileNameDisplay = 57
	ProgressViewHeight = 11
)

// Manager управляет TUI интерфейсом
type Manager struct {
	app           *tview.Application
	pages         *tview.Pages
	currentScreen entities.UIScreen

	// UI компоненты
	mainMenu     *tview.List
	configForm   *tview.Form
	progressView *tview.TextView
	logView      *tview.TextView

	// Callbacks
	onStartProcessing func()

	// Состояние
	configRepo   repositories.AppConfigRepository
	configPath   string
	config       *entities.Config
	logBuffer    []string
	statusMutex  sync.RWMutex
	isProcessing bool

	// Батчинг логов через канал
	logChan  chan string
	logDone  chan struct{}
	logMutex sync.Mutex
}

// NewManager создает новый менеджер TUI
func NewManager(configRepo repositories.AppConfigRepository, configPath string) *Manager {
	m := &Manager{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		configRepo: configRepo,
		configPath: configPath,
		config:     entities.NewConfig(),
		logBuffer:  make([]string, 0, MaxLogBufferSize),
		logChan:    make(chan string, 100),
		logDone:    make(chan struct{}),
	}
	go m.logProcessor()
	return m
}

// Initialize инициализирует TUI
func (m *Manager) Initialize() {
	m.loadConfig()
	m.createUI()
	m.setupKeyBindings()
}

// Run запускает TUI
func (m *Manager) Run() error {
	return m.app.SetRoot(m.pages, true).EnableMouse(true).Run()
}

// SetOnStartProcessing устанавливает callback для начала обработки
func (m *Manager) SetOnStartProcessing(callback func()) {
	m.onStartProcessing = callback
}

// SendStatusUpdate отправляет обновление статуса
func (m *Manager) SendStatusUpdate(status entities.ProcessingStatus) {
	m.updateProgress(status)
}

// GetConfig возвращает копию текущей конфигурации
func (m *Manager) GetConfig() *entities.Config {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()
	config := *m.config
	return &config
}

// loadConfig загружает конфигурацию (отсутствующий файл дает значения по умолчанию)
func (m *Manager) loadConfig() {
	config, err := m.configRepo.Load(m.configPath)
	if err != nil {
		config = entities.NewConfig()
	}
	m.config = config
}

// saveConfig сохраняет конфигурацию
func (m *Manager) saveConfig() {
	m.configRepo.Save(m.configPath, m.config)
}

// createUI создает пользовательский интерфейс
func (m *Manager) createUI() {
	m.createMainMenu()
	m.createConfigScreen()
	m.createProcessingScreen()

	m.pages.AddPage("menu", m.mainMenu, true, true)
	m.pages.AddPage("config", m.configForm, true, false)
	m.pages.AddPage("processing", m.createProcessingLayout(), true, false)

	m.currentScreen = entities.UIScreenMenu
}

// createMainMenu создает главное меню
func (m *Manager) createMainMenu() {
	m.mainMenu = tview.NewList().
		AddItem("🚀 Уменьшить презентацию", "Перекодировать изображения в pptx файле или директории", '1', func() {
			m.startProcessing()
		}).
		AddItem("⚙️ Конфигурация", "Настроить фильтры отбора и параметры перекодирования", '2', func() {
			m.switchToScreen(entities.UIScreenConfig)
		}).
		AddItem("❌ Выход", "Закрыть приложение", 'q', func() {
			m.Cleanup()
			m.app.Stop()
		})

	m.mainMenu.SetBorder(true).
		SetTitle("🔥 PPTX Downsizer - Главное меню").
		SetTitleAlign(tview.AlignCenter)

	m.mainMenu.SetSelectedBackgroundColor(tcell.ColorDarkBlue).
		SetSelectedTextColor(tcell.ColorWhite).
		SetMainTextColor(tcell.ColorWhite).
		SetSecondaryTextColor(tcell.ColorGray)
}

// Порядок элементов формы конфигурации, используется при синхронизации
const (
	formItemInputPath = iota
	formItemFnameFilter
	formItemFsizeFilter
	formItemImgMaxSize
	formItemConvertTo
	formItemQuality
	formItemFillColor
	formItemOverwrite
	formItemWaitBeforeZip
	formItemOnError
	formItemCompressMethod
	formItemOptimizePDF
	formItemAutoStart
)

// createConfigScreen создает экран конфигурации
func (m *Manager) createConfigScreen() {
	downsize := &m.config.Downsize

	m.configForm = tview.NewForm().
		AddInputField("Файл или директория pptx", m.config.Scanner.InputPath, 60, nil, func(text string) {
			m.config.Scanner.InputPath = text
		}).
		AddInputField("Шаблон имени (fnmatch, пусто - все)", downsize.FnameFilter, 30, nil, func(text string) {
			downsize.FnameFilter = text
		}).
		AddInputField("Порог размера файла (байт, 0 - все)", strconv.FormatInt(downsize.FsizeFilter, 10), 15, nil, func(text string) {
			if size, err := entities.ParseByteSize(text); err == nil {
				downsize.FsizeFilter = size
			}
		}).
		AddInputField("Предел стороны изображения (px, 0 - не уменьшать)", strconv.Itoa(downsize.ImgMaxSize), 10, nil, func(text string) {
			if size, err := strconv.Atoi(text); err == nil && size >= 0 {
				downsize.ImgMaxSize = size
			}
		}).
		AddDropDown("Целевой формат", []string{"png", "jpeg"}, func() int {
			if downsize.ConvertTo == "jpeg" || downsize.ConvertTo == "jpg" {
				return 1
			}
			return 0
		}(), func(option string, optionIndex int) {
			downsize.ConvertTo = option
		}).
		AddDropDown("Качество JPEG (%)", []string{"50", "60", "70", "80", "90", "95"}, func() int {
			switch {
			case downsize.Quality <= 50:
				return 0
			case downsize.Quality <= 60:
				return 1
			case downsize.Quality <= 70:
				return 2
			case downsize.Quality <= 80:
				return 3
			case downsize.Quality <= 90:
				return 4
			default:
				return 5
			}
		}(), func(option string, optionIndex int) {
			if quality, err := strconv.Atoi(option); err == nil {
				downsize.Quality = quality
			}
		}).
		AddInputField("Цвет заливки прозрачности (#rrggbb)", downsize.FillColor, 10, nil, func(text string) {
			downsize.FillColor = text
		}).
		AddCheckbox("Перезаписывать существующий результат", downsize.Overwrite, func(checked bool) {
			downsize.Overwrite = checked
		}).
		AddCheckbox("Пауза перед упаковкой", downsize.WaitBeforeZip, func(checked bool) {
			downsize.WaitBeforeZip = checked
		}).
		AddDropDown("При ошибке изображения", []string{entities.OnErrorRaise, entities.OnErrorContinue}, func() int {
			if downsize.OnError == entities.OnErrorContinue {
				return 1
			}
			return 0
		}(), func(option string, optionIndex int) {
			downsize.OnError = option
		}).
		AddDropDown("Сжатие архива", []string{entities.CompressDeflate, entities.CompressStore}, func() int {
			if downsize.CompressMethod == entities.CompressStore {
				return 1
			}
			return 0
		}(), func(option string, optionIndex int) {
			downsize.CompressMethod = option
		}).
		AddCheckbox("Оптимизировать встроенные PDF", downsize.OptimizeEmbeddedPDF, func(checked bool) {
			downsize.OptimizeEmbeddedPDF = checked
		}).
		AddCheckbox("Автостарт", m.config.UI.AutoStart, func(checked bool) {
			m.config.UI.AutoStart = checked
		}).
		AddButton("Сохранить", func() {
			m.saveConfig()
			m.switchToScreen(entities.UIScreenMenu)
			// Позиционируемся на пункте "Конфигурация"
			m.mainMenu.SetCurrentItem(1)
		})

	m.configForm.SetBorder(true).
		SetTitle("🔥 PPTX Downsizer - Конфигурация (ESC - выйти без сохранения)").
		SetTitleAlign(tview.AlignCenter)

	// ESC отменяет изменения: перечитываем конфигурацию из файла
	m.configForm.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			m.loadConfig()
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		}
		return event
	})
}

// createProcessingScreen создает экран обработки
func (m *Manager) createProcessingScreen() {
	m.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true)

	m.progressView.SetBorder(true).
		SetTitle("📊 Прогресс обработки").
		SetTitleAlign(tview.AlignCenter)

	m.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(MaxLogBufferSize)

	m.logView.SetBorder(true).
		SetTitle("📋 Журнал событий").
		SetTitleAlign(tview.AlignCenter)
}

// createProcessingLayout создает layout для экрана обработки
func (m *Manager) createProcessingLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.logView, 0, 1, false).
		AddItem(m.progressView, ProgressViewHeight, 0, false)
}

// setupKeyBindings настраивает горячие клавиши
func (m *Manager) setupKeyBindings() {
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		case tcell.KeyF2:
			m.switchToScreen(entities.UIScreenConfig)
			return nil
		case tcell.KeyF3:
			if m.isProcessing {
				m.switchToScreen(entities.UIScreenProcessing)
			}
			return nil
		case tcell.KeyEscape:
			if m.currentScreen == entities.UIScreenConfig {
				// В конфигурации ESC обрабатывается локально формой
				return event
			} else if m.currentScreen != entities.UIScreenMenu {
				m.switchToScreen(entities.UIScreenMenu)
				return nil
			}
		}

		if m.currentScreen == entities.UIScreenMenu {
			switch event.Rune() {
			case '1':
				m.startProcessing()
				return nil
			case '2':
				m.switchToScreen(entities.UIScreenConfig)
				return nil
			case 'q', 'Q':
				m.Cleanup()
				m.app.Stop()
				return nil
			}
		}

		return event
	})
}

// switchToScreen переключает на указанный экран
func (m *Manager) switchToScreen(screen entities.UIScreen) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	m.currentScreen = screen

	switch screen {
	case entities.UIScreenMenu:
		m.pages.SwitchToPage("menu")
	case entities.UIScreenConfig:
		// При входе в конфигурацию перечитываем файл и синхронизируем форму
		m.loadConfig()
		m.refreshConfigForm()
		m.pages.SwitchToPage("config")
	case entities.UIScreenProcessing:
		m.pages.SwitchToPage("processing")
	}
}

// startProcessing начинает обработку
func (m *Manager) startProcessing() {
	m.saveConfig()
	m.isProcessing = true
	m.switchToScreen(entities.UIScreenProcessing)

	if m.onStartProcessing != nil {
		go m.onStartProcessing()
	}
}

// updateProgress обновляет панель прогресса
func (m *Manager) updateProgress(status entities.ProcessingStatus) {
	if m.progressView == nil {
		return
	}

	progressBar := m.createProgressBar(status.Progress, ProgressBarWidth)
	displayFile := m.truncateFileName(status.CurrentFile, MaxFileNameLength, MaxFileNameDisplay)

	phaseText := status.Phase.String()
	if status.Message != "" {
		phaseText = status.Message
	}

	progressText := fmt.Sprintf(
		"[yellow]⚙️  Фаза:[white] %s\n\n"+
			"[yellow]🖼  Текущее изображение:[white] %s\n",
		phaseText,
		displayFile,
	)

	if status.CurrentFileSize > 0 {
		progressText += fmt.Sprintf("[dim]   Размер: %d kb[white]\n", status.CurrentFileSize/1024)
	}

	progressText += fmt.Sprintf(
		"\n[cyan]📊 Прогресс:[white] %s [cyan]%.1f%%[white]\n\n",
		progressBar,
		status.Progress,
	)

	progressText += fmt.Sprintf(
		"[green]📈 Изображения:[white]\n"+
			"  • Отобрано: [cyan]%d[white]\n"+
			"  • Обработано: [cyan]%d[white]\n"+
			"  • Перекодировано: [green]%d[white]",
		status.TotalImages,
		status.ProcessedImages,
		status.TranscodedImages,
	)

	if status.FailedImages > 0 {
		progressText += fmt.Sprintf("\n  • Ошибок: [red]%d[white]", status.FailedImages)
	}

	if status.TotalOriginalSize > 0 {
		progressText += fmt.Sprintf(
			"\n\n[green]💾 Экономия:[white]\n"+
				"  • Исходный объем: [cyan]%.2f MB[white]\n"+
				"  • Новый объем: [cyan]%.2f MB[white]\n"+
				"  • Сэкономлено: [green]%.2f MB[white]",
			float64(status.TotalOriginalSize)/1024/1024,
			float64(status.TotalNewSize)/1024/1024,
			float64(status.TotalSavedSpace)/1024/1024,
		)
	}

	progressText += fmt.Sprintf(
		"\n\n[yellow]⏱  Прошло:[white] %s\n\n",
		status.FormatElapsedTime(),
	)

	if status.IsComplete {
		if status.Error != nil {
			progressText += "[red]❌ Обработка завершена с ошибкой![white]\n"
			progressText += fmt.Sprintf("[red]Ошибка: %v[white]\n", status.Error)
		} else {
			progressText += "[green]✅ Обработка успешно завершена![white]\n"
		}
		m.isProcessing = false
	}
	progressText += "\n[yellow]F1[white] - Главное меню\n"

	m.app.QueueUpdateDraw(func() {
		m.progressView.SetText(progressText)
	})
}

// truncateFileName корректно усекает имя файла с учетом UTF-8
func (m *Manager) truncateFileName(fileName string, maxLength, truncateAt int) string {
	runes := []rune(fileName)
	if len(runes) <= maxLength {
		return fileName
	}
	return string(runes[:truncateAt]) + "..."
}

// createProgressBar создает цветной прогресс-бар
func (m *Manager) createProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	filled := int(math.Round(progress * float64(width) / 100))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	const filledChar = "█"
	const emptyChar = "░"

	var color string
	switch {
	case progress < 25:
		color = "red"
	case progress < 50:
		color = "yellow"
	case progress < 75:
		color = "blue"
	default:
		color = "green"
	}

	return fmt.Sprintf("[%s]%s[gray]%s", color,
		strings.Repeat(filledChar, filled),
		strings.Repeat(emptyChar, width-filled))
}

// AddLog добавляет запись в журнал через канал (неблокирующе)
func (m *Manager) AddLog(level, message string) {
	var color string
	switch strings.ToLower(level) {
	case "error":
		color = "red"
	case "warning":
		color = "yellow"
	case "success":
		color = "green"
	case "debug":
		color = "gray"
	default:
		color = "white"
	}

	logLine := fmt.Sprintf("[%s]%s:[white] %s", color, strings.ToUpper(level), message)

	// Переполненный канал не блокирует обработку, лог просто теряется
	select {
	case m.logChan <- logLine:
	default:
	}
}

// logProcessor собирает логи в батчи в отдельной горутине
func (m *Manager) logProcessor() {
	ticker := time.NewTicker(LogFlushInterval)
	defer ticker.Stop()

	batch := make([]string, 0, 50)

	for {
		select {
		case logLine := <-m.logChan:
			batch = append(batch, logLine)
			if len(batch) >= 20 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-m.logDone:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
			}
			return
		}
	}
}

// flushLogBatch сбрасывает батч логов в UI
func (m *Manager) flushLogBatch(batch []string) {
	m.statusMutex.Lock()
	m.logBuffer = append(m.logBuffer, batch...)
	if len(m.logBuffer) > MaxLogBufferSize {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-MaxLogBufferSize:]
	}
	logText := strings.Join(m.logBuffer, "\n")
	m.statusMutex.Unlock()

	if m.logView != nil {
		m.app.QueueUpdateDraw(func() {
			if m.logView != nil {
				m.logView.SetText(logText)
				m.logView.ScrollToEnd()
			}
		})
	}
}

// Cleanup освобождает ресурсы менеджера (идемпотентный)
func (m *Manager) Cleanup() {
	m.logMutex.Lock()
	defer m.logMutex.Unlock()

	select {
	case <-m.logDone:
		return
	default:
		close(m.logDone)
	}
}

// refreshConfigForm синхронизирует значения формы с текущей конфигурацией
func (m *Manager) refreshConfigForm() {
	if m.configForm == nil {
		return
	}
	downsize := &m.config.Downsize

	setInput := func(index int, text string) {
		if item := m.configForm.GetFormItem(index); item != nil {
			item.(*tview.InputField).SetText(text)
		}
	}
	setCheckbox := func(index int, checked bool) {
		if item := m.configForm.GetFormItem(index); item != nil {
			item.(*tview.Checkbox).SetChecked(checked)
		}
	}
	setDropDown := func(index, option int) {
		if item := m.configForm.GetFormItem(index); item != nil {
			item.(*tview.DropDown).SetCurrentOption(option)
		}
	}

	setInput(formItemInputPath, m.config.Scanner.InputPath)
	setInput(formItemFnameFilter, downsize.FnameFilter)
	setInput(formItemFsizeFilter, strconv.FormatInt(downsize.FsizeFilter, 10))
	setInput(formItemImgMaxSize, strconv.Itoa(downsize.ImgMaxSize))
	setInput(formItemFillColor, downsize.FillColor)
	setCheckbox(formItemOverwrite, downsize.Overwrite)
	setCheckbox(formItemWaitBeforeZip, downsize.WaitBeforeZip)
	setCheckbox(formItemOptimizePDF, downsize.OptimizeEmbeddedPDF)
	setCheckbox(formItemAutoStart, m.config.UI.AutoStart)

	if downsize.ConvertTo == "jpeg" || downsize.ConvertTo == "jpg" {
		setDropDown(formItemConvertTo, 1)
	} else {
		setDropDown(formItemConvertTo, 0)
	}
	if downsize.OnError == entities.OnErrorContinue {
		setDropDown(formItemOnError, 1)
	} else {
		setDropDown(formItemOnError, 0)
	}
	if downsize.CompressMethod == entities.CompressStore {
		setDropDown(formItemCompressMethod, 1)
	} else {
		setDropDown(formItemCompressMethod, 0)
	}
}
