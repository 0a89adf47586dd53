package logging

import (
	"fmt"
	"log"
	"os"
)

// FileLogger реализация логгера в файл
type FileLogger struct {
	file     *os.File
	logger   *log.Logger
	minLevel int
}

// Уровни логирования
const (
	levelDebug = iota
	levelInfo
	levelWarning
	levelError
)

// NewFileLogger создает новый файловый логгер. Уровень файла привязан
// к уровню подробности консоли: при verbose >= 3 в файл попадает debug.
func NewFileLogger(filename string, verbose int, maxSizeMB int, logToFile bool) (*FileLogger, error) {
	if !logToFile {
		return nil, nil
	}

	// Простейшая ротация: слишком большой лог начинаем заново
	if maxSizeMB > 0 {
		if info, err := os.Stat(filename); err == nil && info.Size() > int64(maxSizeMB)*1024*1024 {
			os.Remove(filename)
		}
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	minLevel := levelInfo
	if verbose >= 3 {
		minLevel = levelDebug
	}

	return &FileLogger{
		file:     file,
		logger:   log.New(file, "", log.LstdFlags),
		minLevel: minLevel,
	}, nil
}

// Debug логирует отладочное сообщение
func (l *FileLogger) Debug(format string, args ...interface{}) {
	l.writeLog(levelDebug, "DEBUG", format, args...)
}

// Info логирует информационное сообщение
func (l *FileLogger) Info(format string, args ...interface{}) {
	l.writeLog(levelInfo, "INFO", format, args...)
}

// Warning логирует предупреждение
func (l *FileLogger) Warning(format string, args ...interface{}) {
	l.writeLog(levelWarning, "WARNING", format, args...)
}

// Error логирует ошибку
func (l *FileLogger) Error(format string, args ...interface{}) {
	l.writeLog(levelError, "ERROR", format, args...)
}

// Success логирует успешное выполнение
func (l *FileLogger) Success(format string, args ...interface{}) {
	l.writeLog(levelInfo, "SUCCESS", format, args...)
}

// Close закрывает логгер
func (l *FileLogger) Close() error {
	if l != nil && l.file != nil {
		return l.file.Close()
	}
	return nil
}

// writeLog записывает лог. Отключенный логгер (nil) безопасен:
// вызывающие передают его через интерфейс без проверки.
func (l *FileLogger) writeLog(level int, tag, format string, args ...interface{}) {
	if l == nil || l.logger == nil || level < l.minLevel {
		return
	}
	l.logger.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}
