package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"downsizer/internal/domain/entities"
	"downsizer/internal/domain/repositories"
	"downsizer/internal/infrastructure/archive"
	"downsizer/internal/infrastructure/config"
	"downsizer/internal/infrastructure/logging"
	infraRepos "downsizer/internal/infrastructure/repositories"
	"downsizer/internal/infrastructure/transcoders"
	"downsizer/internal/interface/controllers"
	"downsizer/internal/presentation/tui"
	usecases "downsizer/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	useTUI := flag.Bool("tui", false, "запустить текстовый интерфейс")

	fnameFilter := flag.String("fname-filter", "", "glob-шаблон имени изображения, например '*.tiff'")
	fsizeFilter := flag.String("fsize-filter", "", "порог размера файла в байтах (допустим формат '1e6'), 0 - все")
	imgMaxSize := flag.Int("img-max-size", 0, "предел длинной стороны изображения в пикселях, 0 - не уменьшать")
	convertTo := flag.String("convert-to", "", "целевой формат изображений: png или jpeg")
	imgMode := flag.String("img-mode", "", "целевой цветовой режим (поддерживается только RGB)")
	fillColor := flag.String("fill-color", "", "цвет заливки прозрачных областей, '#rrggbb'")
	quality := flag.Int("quality", 0, "качество JPEG (1-100)")
	noOptimize := flag.Bool("no-optimize", false, "отключить оптимизацию кодирования")
	outputFormat := flag.String("outputfn-fmt", "", "шаблон имени результата, поддерживает {fnroot} и {filename}")
	overwrite := flag.Bool("overwrite", false, "перезаписывать существующий выходной файл без вопроса")
	compressType := flag.String("compress-type", "", "метод сжатия архива: deflate или store")
	compressLevel := flag.Int("compress-level", 0, "уровень deflate (1-9)")
	waitBeforeZip := flag.Bool("wait-before-zip", false, "пауза для ручных правок перед упаковкой")
	onError := flag.String("on-error", "", "поведение при ошибке изображения: continue или raise")
	optimizePDF := flag.Bool("optimize-embedded-pdf", false, "оптимизировать встроенные PDF файлы")
	verbose := flag.Int("verbose", -1, "уровень подробности вывода (0-5)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Использование: %s [флаги] <файл.pptx | директория>\n\nФлаги:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Конфигурация из файла, флаги командной строки имеют приоритет
	configRepo := config.NewRepository()
	appConfig, err := configRepo.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fname-filter":
			appConfig.Downsize.FnameFilter = *fnameFilter
		case "fsize-filter":
			size, err := entities.ParseByteSize(*fsizeFilter)
			if err != nil {
				log.Fatalf("Некорректное значение -fsize-filter: %v", err)
			}
			appConfig.Downsize.FsizeFilter = size
		case "img-max-size":
			appConfig.Downsize.ImgMaxSize = *imgMaxSize
		case "convert-to":
			appConfig.Downsize.ConvertTo = *convertTo
		case "img-mode":
			appConfig.Downsize.ImgMode = *imgMode
		case "fill-color":
			appConfig.Downsize.FillColor = *fillColor
		case "quality":
			appConfig.Downsize.Quality = *quality
		case "no-optimize":
			appConfig.Downsize.Optimize = !*noOptimize
		case "outputfn-fmt":
			appConfig.Downsize.OutputFormat = *outputFormat
		case "overwrite":
			appConfig.Downsize.Overwrite = *overwrite
		case "compress-type":
			appConfig.Downsize.CompressMethod = *compressType
		case "compress-level":
			appConfig.Downsize.CompressLevel = *compressLevel
		case "wait-before-zip":
			appConfig.Downsize.WaitBeforeZip = *waitBeforeZip
		case "on-error":
			appConfig.Downsize.OnError = *onError
		case "optimize-embedded-pdf":
			appConfig.Downsize.OptimizeEmbeddedPDF = *optimizePDF
		case "verbose":
			appConfig.Output.Verbose = *verbose
		case "tui":
			appConfig.UI.UseTUI = *useTUI
		}
	})
	if flag.NArg() > 0 {
		appConfig.Scanner.InputPath = flag.Arg(0)
	}

	fileLogger, err := logging.NewFileLogger(
		appConfig.Output.LogFileName,
		appConfig.Output.Verbose,
		appConfig.Output.LogMaxSizeMB,
		appConfig.Output.LogToFile,
	)
	if err != nil {
		log.Printf("Предупреждение: не удалось инициализировать файловый логгер: %v", err)
	}

	var exitCode int
	if appConfig.UI.UseTUI {
		exitCode = runTUI(appConfig, configRepo, *configPath, fileLogger)
	} else {
		exitCode = runConsole(appConfig, fileLogger)
	}
	os.Exit(exitCode)
}

// newDownsizeUseCase собирает сценарий уменьшения презентации
func newDownsizeUseCase(logger repositories.Logger) (*usecases.DownsizePresentationUseCase, *usecases.ProcessPresentationsUseCase) {
	fileRepo := infraRepos.NewFileSystemRepository()

	downsizeUseCase := usecases.NewDownsizePresentationUseCase(
		archive.NewRepository(),
		transcoders.NewImageTranscoder(),
		transcoders.NewPDFCPUOptimizer(),
		fileRepo,
		logger,
	)
	batchUseCase := usecases.NewProcessPresentationsUseCase(downsizeUseCase, fileRepo, logger)

	return downsizeUseCase, batchUseCase
}

// runConsole выполняет обработку в консольном режиме
func runConsole(appConfig *entities.Config, fileLogger repositories.Logger) int {
	logger := logging.NewConsoleLogger(fileLogger, appConfig.Output.Verbose)
	defer logger.Close()

	if appConfig.Output.Verbose > 2 {
		if data, err := yaml.Marshal(&appConfig.Downsize); err == nil {
			logger.Debug("Действующая конфигурация:\n%s", string(data))
		}
	}

	controller := controllers.NewConsoleController()

	downsizeUseCase, batchUseCase := newDownsizeUseCase(logger)
	downsizeUseCase.SetPrompter(controller)

	processor := NewApplicationProcessor(downsizeUseCase, batchUseCase, appConfig, logger)
	defer processor.Shutdown()

	if err := processor.StartProcessing(); err != nil {
		return 1
	}

	if processor.lastBatchResult != nil {
		controller.ShowBatchResult(processor.lastBatchResult)
	} else if processor.lastResult != nil {
		controller.ShowResult(processor.lastResult)
	}
	return 0
}

// runTUI выполняет обработку в интерактивном текстовом интерфейсе
func runTUI(appConfig *entities.Config, configRepo repositories.AppConfigRepository, configPath string, fileLogger repositories.Logger) int {
	tuiManager := tui.NewManager(configRepo, configPath)
	tuiManager.Initialize()

	logger := tui.NewUILogger(fileLogger, tuiManager, appConfig.Output.Verbose)
	defer logger.Close()

	downsizeUseCase, batchUseCase := newDownsizeUseCase(logger)
	downsizeUseCase.SetProgressReporter(func(s entities.ProcessingStatus) {
		tuiManager.SendStatusUpdate(s)
	})

	processor := NewApplicationProcessor(downsizeUseCase, batchUseCase, appConfig, logger)
	defer processor.Shutdown()

	tuiManager.SetOnStartProcessing(func() {
		// Берем актуальную конфигурацию из формы TUI
		processor.config = tuiManager.GetConfig()
		processor.StartProcessing()
	})

	if appConfig.UI.AutoStart {
		go processor.StartProcessing()
	}

	if err := tuiManager.Run(); err != nil {
		log.Printf("Ошибка запуска TUI: %v", err)
		return 1
	}
	tuiManager.Cleanup()
	return 0
}
