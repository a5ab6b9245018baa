package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestHashReaderStableAndDistinct(t *testing.T) {
	h1, err := HashReader(bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("HashReader returned error: %v", err)
	}
	h2, err := HashReader(bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("HashReader returned error: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("identical content produced different hashes: %s vs %s", h1, h2)
	}

	h3, err := HashReader(bytes.NewReader([]byte("other")))
	if err != nil {
		t.Fatalf("HashReader returned error: %v", err)
	}
	if h1 == h3 {
		t.Fatalf("different content produced identical hash %s", h1)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "passwd",
		"a/b/c.txt":        "c.txt",
		"..":               "_",
		"":                 "file",
		"weird\\name..png": "weird_name_.png",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore returned error: %v", err)
	}

	content := []byte("hello world")
	hash, _ := HashReader(bytes.NewReader(content))

	path, size, err := store.Save(hash, "hello.txt", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), size)
	}

	// Second save with a zero-length reader must not rewrite the blob.
	path2, size2, err := store.Save(hash, "hello.txt", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	if path2 != path || size2 != size {
		t.Fatalf("second Save changed the stored blob: %s/%d vs %s/%d", path2, size2, path, size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("stored blob was rewritten")
	}
}

func TestDeleteRemovesFileAndDir(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore returned error: %v", err)
	}

	content := []byte("to be removed")
	hash, _ := HashReader(bytes.NewReader(content))
	if _, _, err := store.Save(hash, "gone.txt", bytes.NewReader(content)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := store.Delete(hash, "gone.txt"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if store.Exists(hash) {
		t.Fatalf("expected per-hash directory to be removed")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), hash)); !os.IsNotExist(err) {
		t.Fatalf("expected stat to report not-exist, got %v", err)
	}
}

func TestPathStaysInsideRoot(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore returned error: %v", err)
	}

	p := store.Path("abc123", "../../escape.txt")
	rel, err := filepath.Rel(store.Root(), p)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) > 1 && rel[:2] == ".." {
		t.Fatalf("path escaped blob root: %s", p)
	}
}
