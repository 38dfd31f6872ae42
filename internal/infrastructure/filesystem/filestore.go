// Package filesystem provides filesystem operations for model artifact storage.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

const (
	// ScopeDir is the name of the quacktokenscope data directory.
	ScopeDir = ".quacktokenscope"

	// ModelsDir is the subdirectory for tokenizer model artifacts.
	ModelsDir = "models"
)

// FileStore implements the application FileStorePort on the local
// filesystem. Writes are atomic: content lands in a temp file that is
// renamed over the destination.
type FileStore struct{}

// NewFileStore creates a new local filesystem store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// DefaultModelsDir returns the models directory under the user's home
// quacktokenscope directory, falling back to a relative path when the home
// directory cannot be resolved.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(ScopeDir, ModelsDir)
	}
	return filepath.Join(home, ScopeDir, ModelsDir)
}

// CreateDirectory creates a directory and any missing parents.
func (fs *FileStore) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return wrapFileErr("failed to create directory", path, err)
	}
	return nil
}

// JoinPath joins path elements using the platform separator.
func (fs *FileStore) JoinPath(elem ...string) string {
	return filepath.Join(elem...)
}

// Stat returns file info for a path.
func (fs *FileStore) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapFileErr("failed to stat", path, err)
	}
	return info, nil
}

// ReadText reads a file and returns its contents as a string.
func (fs *FileStore) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrapFileErr("failed to read", path, err)
	}
	return string(data), nil
}

// WriteText writes text to a file atomically. The content goes to a temp
// file in the destination directory first, so a crash mid-write never
// leaves a truncated file behind.
func (fs *FileStore) WriteText(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return wrapFileErr("failed to create temp file in", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrapFileErr("failed to write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrapFileErr("failed to close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return wrapFileErr("failed to replace", path, err)
	}
	return nil
}

// CreateTempDir creates a unique temporary directory under dir with the
// given name pattern.
func (fs *FileStore) CreateTempDir(dir, pattern string) (string, error) {
	path, err := os.MkdirTemp(dir, pattern)
	if err != nil {
		return "", wrapFileErr("failed to create temp directory in", dir, err)
	}
	return path, nil
}

func wrapFileErr(action, path string, err error) error {
	return domainerrors.NewError(domainerrors.CodeFileStore,
		fmt.Sprintf("%s %s", action, path),
		fmt.Errorf("%w: %v", domainerrors.ErrFileAccess, err))
}
