package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"

	"downsizer/internal/domain/entities"
)

// Pack собирает новый pptx архив из рабочей директории.
// Записи пишутся в переданном порядке единым методом сжатия.
// Архив сначала создается во временном файле и переименовывается
// только после успешной записи, чтобы не оставлять битый вывод.
func (r *Repository) Pack(workDir, outputPath string, names []string, config *entities.DownsizeConfig) error {
	tmpPath := outputPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("не удалось создать выходной файл: %w", err)
	}

	if err := r.writeArchive(out, workDir, names, config); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось закрыть выходной файл: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось переименовать временный архив: %w", err)
	}
	return nil
}

// writeArchive пишет все записи в zip
func (r *Repository) writeArchive(out io.Writer, workDir string, names []string, config *entities.DownsizeConfig) error {
	writer := zip.NewWriter(out)

	method := uint16(zip.Store)
	if config == nil || config.CompressMethod != entities.CompressStore {
		method = zip.Deflate
		level := flate.DefaultCompression
		if config != nil && config.CompressLevel >= flate.BestSpeed && config.CompressLevel <= flate.BestCompression {
			level = config.CompressLevel
		}
		// flate из klauspost/compress заметно быстрее стандартного при тех же уровнях
		writer.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		})
	}

	now := time.Now()
	for _, name := range names {
		srcPath := filepath.Join(workDir, filepath.FromSlash(name))
		if err := writeEntry(writer, srcPath, name, method, now); err != nil {
			writer.Close()
			return fmt.Errorf("не удалось записать запись %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("не удалось завершить архив: %w", err)
	}
	return nil
}

// writeEntry пишет одну запись архива из файла на диске
func writeEntry(writer *zip.Writer, srcPath, entryName string, method uint16, modified time.Time) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	header := &zip.FileHeader{
		Name:     entryName,
		Method:   method,
		Modified: modified,
	}

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	return err
}
