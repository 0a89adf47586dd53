package tui

import (
	"fmt"

	"downsizer/internal/domain/repositories"
)

// UILogger адаптер логгера для журнала событий TUI: сообщения дублируются
// в файловый логгер, на экран попадают с учетом уровня подробности
type UILogger struct {
	fileLogger repositories.Logger
	tuiManager *Manager
	verbose    int
}

// NewUILogger создает новый UI логгер
func NewUILogger(fileLogger repositories.Logger, tuiManager *Manager, verbose int) *UILogger {
	return &UILogger{
		fileLogger: fileLogger,
		tuiManager: tuiManager,
		verbose:    verbose,
	}
}

// Debug логирует отладочное сообщение
func (l *UILogger) Debug(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Debug(format, args...)
	}
	if l.tuiManager != nil && l.verbose > 2 {
		l.tuiManager.AddLog("DEBUG", fmt.Sprintf(format, args...))
	}
}

// Info логирует информационное сообщение
func (l *UILogger) Info(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Info(format, args...)
	}
	if l.tuiManager != nil && l.verbose > 0 {
		l.tuiManager.AddLog("INFO", fmt.Sprintf(format, args...))
	}
}

// Warning логирует предупреждение
func (l *UILogger) Warning(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Warning(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("WARNING", fmt.Sprintf(format, args...))
	}
}

// Error логирует ошибку
func (l *UILogger) Error(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Error(format, args...)
	}
	if l.tuiManager != nil {
		l.tuiManager.AddLog("ERROR", fmt.Sprintf(format, args...))
	}
}

// Success логирует успешное выполнение
func (l *UILogger) Success(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Success(format, args...)
	}
	if l.tuiManager != nil && l.verbose > 0 {
		l.tuiManager.AddLog("SUCCESS", fmt.Sprintf(format, args...))
	}
}

// Close закрывает логгер
func (l *UILogger) Close() error {
	if l.fileLogger != nil {
		return l.fileLogger.Close()
	}
	return nil
}
