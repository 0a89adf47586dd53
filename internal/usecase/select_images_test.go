package usecases_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"downsizer/internal/domain/entities"
	usecases "downsizer/internal/usecase"
)

// writeMediaFile создает файл заданного размера в ppt/media рабочей директории
func writeMediaFile(t *testing.T, workDir, name string, size int) {
	t.Helper()
	mediaDir := filepath.Join(workDir, "ppt", "media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mediaDir, name), bytes.Repeat([]byte{0xab}, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSelectImages(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]int // имя -> размер
		fnameFilter string
		fsizeFilter int64
		want        []string
	}{
		{
			name:        "порог размера отсекает маленькие файлы",
			files:       map[string]int{"image1.png": 2048, "image2.png": 100},
			fsizeFilter: 1024,
			want:        []string{"image1.png"},
		},
		{
			name:        "нулевой порог отбирает все",
			files:       map[string]int{"image1.png": 10, "image2.tiff": 20},
			fsizeFilter: 0,
			want:        []string{"image1.png", "image2.tiff"},
		},
		{
			name:        "glob-шаблон без учета регистра",
			files:       map[string]int{"image1.TIFF": 2048, "image2.png": 2048},
			fnameFilter: "*.tiff",
			fsizeFilter: 1024,
			want:        []string{"image1.TIFF"},
		},
		{
			name:        "файлы вне шаблона image* игнорируются",
			files:       map[string]int{"image1.png": 2048, "logo.png": 2048},
			fsizeFilter: 1024,
			want:        []string{"image1.png"},
		},
		{
			name:        "размер равный порогу не отбирается",
			files:       map[string]int{"image1.png": 1024},
			fsizeFilter: 1024,
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workDir := t.TempDir()
			for name, size := range tt.files {
				writeMediaFile(t, workDir, name, size)
			}

			config := entities.NewDownsizeConfig()
			config.FnameFilter = tt.fnameFilter
			config.FsizeFilter = tt.fsizeFilter

			got, err := usecases.SelectImages(workDir, config)
			if err != nil {
				t.Fatalf("SelectImages() error = %v", err)
			}

			var gotNames []string
			for _, path := range got {
				gotNames = append(gotNames, filepath.Base(path))
			}
			if len(gotNames) != len(tt.want) {
				t.Fatalf("SelectImages() = %v, want %v", gotNames, tt.want)
			}
			for i := range tt.want {
				if gotNames[i] != tt.want[i] {
					t.Errorf("SelectImages()[%d] = %q, want %q", i, gotNames[i], tt.want[i])
				}
			}
		})
	}
}

func TestSelectImages_InvalidPattern(t *testing.T) {
	workDir := t.TempDir()
	writeMediaFile(t, workDir, "image1.png", 2048)

	config := entities.NewDownsizeConfig()
	config.FnameFilter = "[неполный"
	config.FsizeFilter = 0

	if _, err := usecases.SelectImages(workDir, config); err == nil {
		t.Fatal("SelectImages() must fail on an invalid pattern")
	}
}

func TestSelectImages_MissingMediaDir(t *testing.T) {
	got, err := usecases.SelectImages(t.TempDir(), entities.NewDownsizeConfig())
	if err != nil {
		t.Fatalf("SelectImages() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SelectImages() = %v, want empty result", got)
	}
}
