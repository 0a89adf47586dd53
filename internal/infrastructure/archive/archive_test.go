package archive_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"downsizer/internal/domain/entities"
	"downsizer/internal/infrastructure/archive"
)

// writeTestArchive создает zip архив с заданными записями в заданном порядке
func writeTestArchive(t *testing.T, path string, entries [][2]string) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, entry := range entries {
		w, err := writer.Create(entry[0])
		if err != nil {
			t.Fatalf("Failed to create entry %s: %v", entry[0], err)
		}
		if _, err := w.Write([]byte(entry[1])); err != nil {
			t.Fatalf("Failed to write entry %s: %v", entry[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
}

// readArchiveEntries читает все записи архива в порядке следования
func readArchiveEntries(t *testing.T, path string) ([]string, map[string][]byte) {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer reader.Close()

	var names []string
	contents := make(map[string][]byte)
	for _, file := range reader.File {
		names = append(names, file.Name)
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("Failed to open entry %s: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry %s: %v", file.Name, err)
		}
		contents[file.Name] = data
	}
	return names, contents
}

func TestRepository_ExtractPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "input.pptx")
	writeTestArchive(t, archivePath, [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"ppt/presentation.xml", "<presentation/>"},
		{"ppt/media/image1.png", "png-bytes"},
		{"ppt/slides/slide1.xml", "<slide/>"},
	})

	repo := archive.NewRepository()
	workDir := filepath.Join(dir, "work")
	entries, err := repo.Extract(archivePath, workDir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	expected := []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
		"ppt/media/image1.png",
		"ppt/slides/slide1.xml",
	}
	if len(entries) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(entries))
	}
	for i, name := range expected {
		if entries[i].Name != name {
			t.Errorf("Entry %d: expected %q, got %q", i, name, entries[i].Name)
		}
	}

	data, err := os.ReadFile(filepath.Join(workDir, "ppt", "media", "image1.png"))
	if err != nil {
		t.Fatalf("Extracted file missing: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Extracted content = %q, want %q", data, "png-bytes")
	}
}

func TestRepository_ExtractRejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.pptx")
	writeTestArchive(t, archivePath, [][2]string{
		{"../evil.txt", "payload"},
	})

	repo := archive.NewRepository()
	if _, err := repo.Extract(archivePath, filepath.Join(dir, "work")); err == nil {
		t.Error("Expected error for entry escaping the work directory")
	}
}

func TestRepository_ExtractMissingArchive(t *testing.T) {
	repo := archive.NewRepository()
	if _, err := repo.Extract(filepath.Join(t.TempDir(), "missing.pptx"), t.TempDir()); err == nil {
		t.Error("Expected error for missing archive")
	}
}

func TestRepository_PackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.pptx")
	original := [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"ppt/media/image1.png", "png-bytes"},
		{"ppt/slides/slide1.xml", "<slide/>"},
	}
	writeTestArchive(t, inputPath, original)

	repo := archive.NewRepository()
	workDir := filepath.Join(dir, "work")
	entries, err := repo.Extract(inputPath, workDir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	outputPath := filepath.Join(dir, "output.pptx")
	config := entities.NewDownsizeConfig()
	if err := repo.Pack(workDir, outputPath, names, config); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	gotNames, gotContents := readArchiveEntries(t, outputPath)
	if len(gotNames) != len(original) {
		t.Fatalf("Expected %d entries, got %d", len(original), len(gotNames))
	}
	for i, entry := range original {
		if gotNames[i] != entry[0] {
			t.Errorf("Entry %d: expected %q, got %q", i, entry[0], gotNames[i])
		}
		if !bytes.Equal(gotContents[entry[0]], []byte(entry[1])) {
			t.Errorf("Entry %s content mismatch: got %q, want %q", entry[0], gotContents[entry[0]], entry[1])
		}
	}
}

func TestRepository_PackStoreMethod(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "a.xml"), []byte("<a/>"), 0644); err != nil {
		t.Fatal(err)
	}

	config := entities.NewDownsizeConfig()
	config.CompressMethod = entities.CompressStore

	outputPath := filepath.Join(dir, "out.pptx")
	repo := archive.NewRepository()
	if err := repo.Pack(workDir, outputPath, []string{"a.xml"}, config); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer reader.Close()

	if reader.File[0].Method != zip.Store {
		t.Errorf("Expected store method, got %d", reader.File[0].Method)
	}
}

func TestRepository_PackMissingFileLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatal(err)
	}

	outputPath := filepath.Join(dir, "out.pptx")
	repo := archive.NewRepository()
	err := repo.Pack(workDir, outputPath, []string{"missing.xml"}, entities.NewDownsizeConfig())
	if err == nil {
		t.Fatal("Expected error for missing entry file")
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("Failed pack must not leave an output file behind")
	}
	if _, statErr := os.Stat(outputPath + ".tmp"); !os.IsNotExist(statErr) {
		t.Error("Failed pack must not leave a temporary file behind")
	}
}
