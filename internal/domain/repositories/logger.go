package repositories

// Logger интерфейс логирования хода обработки презентаций.
// Реализации фильтруют вывод по уровню подробности (verbose):
// 0 - только ошибки и предупреждения, 1-2 - Info/Success, 3+ - Debug.
// Success - информационный уровень для итогов успешной обработки.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Success(format string, args ...interface{})
	// Close сбрасывает и закрывает файловый приемник, если он есть
	Close() error
}
