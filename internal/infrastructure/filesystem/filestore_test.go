package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

func TestCreateDirectory(t *testing.T) {
	fs := NewFileStore()
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := fs.CreateDirectory(path); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}

	// Creating an existing directory is a no-op.
	if err := fs.CreateDirectory(path); err != nil {
		t.Errorf("CreateDirectory() on existing path error = %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := NewFileStore()
	path := filepath.Join(t.TempDir(), "artifact.txt")
	content := "header\ntoken one\ntoken two\n"

	if err := fs.WriteText(path, content); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	got, err := fs.ReadText(path)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if got != content {
		t.Errorf("ReadText() = %q, want %q", got, content)
	}
}

func TestWriteTextReplacesAtomically(t *testing.T) {
	fs := NewFileStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")

	if err := fs.WriteText(path, "old"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if err := fs.WriteText(path, "new"); err != nil {
		t.Fatalf("second WriteText() error = %v", err)
	}
	got, err := fs.ReadText(path)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if got != "new" {
		t.Errorf("ReadText() = %q, want %q", got, "new")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestReadTextMissingFile(t *testing.T) {
	fs := NewFileStore()
	_, err := fs.ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, domainerrors.ErrFileAccess) {
		t.Errorf("ReadText() error = %v, want ErrFileAccess", err)
	}
}

func TestStatMissingPath(t *testing.T) {
	fs := NewFileStore()
	_, err := fs.Stat(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, domainerrors.ErrFileAccess) {
		t.Errorf("Stat() error = %v, want ErrFileAccess", err)
	}
}

func TestCreateTempDir(t *testing.T) {
	fs := NewFileStore()
	base := t.TempDir()

	first, err := fs.CreateTempDir(base, "train-*")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}
	second, err := fs.CreateTempDir(base, "train-*")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}
	if first == second {
		t.Errorf("CreateTempDir() returned the same path twice: %s", first)
	}
}

func TestJoinPath(t *testing.T) {
	fs := NewFileStore()
	got := fs.JoinPath("a", "b", "c.txt")
	want := filepath.Join("a", "b", "c.txt")
	if got != want {
		t.Errorf("JoinPath() = %q, want %q", got, want)
	}
}
