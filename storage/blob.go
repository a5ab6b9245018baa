package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// BlobStore keeps uploaded bytes under <root>/<hash>/<sanitized-name>.
// The hash is the content identity, so at most one physical copy per
// distinct content ever exists; the metadata catalog, not the
// filesystem, is the source of truth for whether content is servable.
type BlobStore struct {
	root string
}

func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &BlobStore{root: root}, nil
}

func (s *BlobStore) Root() string {
	return s.root
}

// HashReader digests the full content with SHA-256 and returns the
// lowercase hex key.
func HashReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// SanitizeFilename strips directory components and path-traversal
// sequences before the name touches the filesystem.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer("..", "_", "/", "_", "\\", "_")
	name = replacer.Replace(name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}

func (s *BlobStore) dir(hash string) string {
	return filepath.Join(s.root, hash)
}

// Path returns the on-disk location for a blob. The name is sanitized
// again here so a path built from catalog data can never escape the
// root.
func (s *BlobStore) Path(hash, name string) string {
	return filepath.Join(s.dir(hash), SanitizeFilename(name))
}

func (s *BlobStore) Exists(hash string) bool {
	info, err := os.Stat(s.dir(hash))
	return err == nil && info.IsDir()
}

// Save writes the content to the content-addressed path and returns the
// stored path and byte size. Saving is idempotent: when the per-hash
// directory already holds the blob, nothing is rewritten.
func (s *BlobStore) Save(hash, name string, r io.Reader) (string, int64, error) {
	path := s.Path(hash, name)

	if info, err := os.Stat(path); err == nil {
		return path, info.Size(), nil
	}

	if err := os.MkdirAll(s.dir(hash), 0o755); err != nil {
		return "", 0, fmt.Errorf("create blob dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("close blob: %w", err)
	}

	return path, size, nil
}

// Delete removes the stored file and its per-hash directory.
func (s *BlobStore) Delete(hash, name string) error {
	path := s.Path(hash, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	if err := os.Remove(s.dir(hash)); err != nil && !os.IsNotExist(err) {
		// Tolerate a non-empty directory; the one expected file is
		// already gone.
		if strings.Contains(err.Error(), "not empty") {
			return nil
		}
		return fmt.Errorf("remove blob dir: %w", err)
	}
	return nil
}

// DetectMime sniffs the stored blob's content type.
func (s *BlobStore) DetectMime(hash, name string) string {
	mtype, err := mimetype.DetectFile(s.Path(hash, name))
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
