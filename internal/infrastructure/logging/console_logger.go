package logging

import (
	"fmt"
	"os"

	"downsizer/internal/domain/repositories"
)

// ConsoleLogger логгер консольного режима: печатает сообщения на экран
// с учетом уровня подробности и дублирует их в файловый логгер
type ConsoleLogger struct {
	fileLogger repositories.Logger
	verbose    int
}

// NewConsoleLogger создает новый консольный логгер.
// Уровни подробности соответствуют оригинальному поведению:
// 0 - только ошибки, 1 - основные сообщения, 2 - детали, 3+ - отладка.
func NewConsoleLogger(fileLogger repositories.Logger, verbose int) *ConsoleLogger {
	return &ConsoleLogger{
		fileLogger: fileLogger,
		verbose:    verbose,
	}
}

// Debug логирует отладочное сообщение
func (l *ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Debug(format, args...)
	}
	if l.verbose > 2 {
		fmt.Printf(format+"\n", args...)
	}
}

// Info логирует информационное сообщение
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Info(format, args...)
	}
	if l.verbose > 0 {
		fmt.Printf(format+"\n", args...)
	}
}

// Warning логирует предупреждение
func (l *ConsoleLogger) Warning(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Warning(format, args...)
	}
	fmt.Printf("⚠️  "+format+"\n", args...)
}

// Error логирует ошибку
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Error(format, args...)
	}
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
}

// Success логирует успешное выполнение
func (l *ConsoleLogger) Success(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Success(format, args...)
	}
	if l.verbose > 0 {
		fmt.Printf("✅ "+format+"\n", args...)
	}
}

// Close закрывает логгер
func (l *ConsoleLogger) Close() error {
	if l.fileLogger != nil {
		return l.fileLogger.Close()
	}
	return nil
}
