package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleDoc = `<SitemapGeneratorSettings><AppSettings/></SitemapGeneratorSettings>`

func TestFileSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap_settings.xml")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	data, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(data) != sampleDoc {
		t.Errorf("Load() = %s, want %s", data, sampleDoc)
	}
}

func TestFileSourceLoadMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.xml"))
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Expected error for missing document")
	}
}

func TestFileSourceEmptyPath(t *testing.T) {
	src := NewFileSource("")
	if _, err := src.Load(context.Background()); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Load() error = %v, want ErrEmptyPath", err)
	}
	if err := src.Submit(context.Background(), []byte(sampleDoc)); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Submit() error = %v, want ErrEmptyPath", err)
	}
}

func TestFileSourceSubmit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitemap_settings.xml")
	if err := os.WriteFile(path, []byte("<old/>"), 0600); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	if err := src.Submit(context.Background(), []byte(sampleDoc)); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleDoc {
		t.Errorf("document = %s, want %s", data, sampleDoc)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestFileSourceSubmitEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "sitemap_settings.xml"))
	if err := src.Submit(context.Background(), nil); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Submit() error = %v, want ErrEmptyDocument", err)
	}
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewFileSource(filepath.Join(t.TempDir(), "sitemap_settings.xml"))
	if err := src.Submit(ctx, []byte(sampleDoc)); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}
}
