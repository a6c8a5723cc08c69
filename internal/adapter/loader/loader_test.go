package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkerIncludesAndExcludes(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "herbs.txt", "Triphala")
	writeFile(t, tmpDir, "notes.md", "Ashwagandha")
	writeFile(t, tmpDir, "ignore.csv", "1,2,3")
	writeFile(t, tmpDir, filepath.Join(".cache", "skip.txt"), "cached")

	w := NewWalker([]string{"**/*.txt", "**/*.md"}, []string{"**/.*/**", ".*/"})

	files, err := w.Walk(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "herbs.txt" && base != "notes.md" {
			t.Errorf("unexpected file: %s", f)
		}
	}
}

func TestWalkerDeterministicOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "b.txt", "b")
	writeFile(t, tmpDir, "a.txt", "a")
	writeFile(t, tmpDir, "c.txt", "c")

	w := NewWalker([]string{"**/*.txt"}, nil)

	first, err := w.Walk(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.Walk(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 3 {
		t.Fatalf("expected 3 files, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("walk order differs at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestTextLoaderSinglePage(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "herbs.txt")
	content := "Triphala is a foundational digestive blend."
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewTextLoader()
	if !l.CanLoad(path) {
		t.Fatal("expected TextLoader to handle .txt")
	}
	if l.CanLoad(filepath.Join(tmpDir, "doc.pdf")) {
		t.Error("TextLoader should not handle .pdf")
	}

	pages, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Number != 0 {
		t.Errorf("expected page number 0, got %d", pages[0].Number)
	}
	if pages[0].Text != content {
		t.Errorf("unexpected page text: %q", pages[0].Text)
	}
}

func TestTextLoaderEmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewTextLoader().Load(path); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestPDFLoaderExtension(t *testing.T) {
	l := NewPDFLoader()
	if !l.CanLoad("/docs/charaka.PDF") {
		t.Error("expected PDFLoader to handle .PDF case-insensitively")
	}
	if l.CanLoad("/docs/charaka.txt") {
		t.Error("PDFLoader should not handle .txt")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
