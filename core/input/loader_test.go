package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hublun/MDConverter/core"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	os.WriteFile(path, []byte("<html><body>hello</body></html>"), 0644)

	got, err := Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "hello") {
		t.Fatalf("expected content, got %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.html"), 0)
	if !errors.Is(err, core.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	os.WriteFile(path, nil, 0644)

	if _, err := Load(path, 0); !errors.Is(err, core.ErrInput) {
		t.Fatalf("expected ErrInput for empty file, got %v", err)
	}
}

func TestLoadTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.html")
	os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0644)

	if _, err := Load(path, 10); !errors.Is(err, core.ErrInput) {
		t.Fatalf("expected ErrInput for oversized file, got %v", err)
	}
}

func TestLoadLatin1Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.html")
	// "café" in Latin-1: é is 0xE9, invalid as UTF-8.
	os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0644)

	got, err := Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "café" {
		t.Fatalf("expected café, got %q", got)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.html"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "b.htm"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	// Saved-page asset directory: its HTML fragments must be skipped.
	assetDir := filepath.Join(dir, "a_files")
	os.MkdirAll(assetDir, 0755)
	os.WriteFile(filepath.Join(assetDir, "frame.html"), []byte("x"), 0644)

	files, err := Discover([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if strings.Contains(f, "_files") {
			t.Fatalf("asset directory fragment discovered: %s", f)
		}
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	os.WriteFile(path, []byte("x"), 0644)

	files, err := Discover([]string{path, path, dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 deduplicated file, got %d: %v", len(files), files)
	}
}

func TestDiscoverNoHTML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	if _, err := Discover([]string{dir}); !errors.Is(err, core.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}
