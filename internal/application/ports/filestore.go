package ports

import "os"

// FileStorePort defines the interface for the filesystem operations tokenizer
// variants need to persist and reload trained model artifacts.
type FileStorePort interface {
	// CreateDirectory creates a directory and any missing parents.
	CreateDirectory(path string) error

	// JoinPath joins path elements using the platform separator.
	JoinPath(elem ...string) string

	// Stat returns file info for a path.
	Stat(path string) (os.FileInfo, error)

	// ReadText reads a file and returns its contents as a string.
	ReadText(path string) (string, error)

	// WriteText writes text to a file atomically, replacing any existing
	// content only once the full write has succeeded.
	WriteText(path, content string) error

	// CreateTempDir creates a unique temporary directory under dir with the
	// given name pattern.
	CreateTempDir(dir, pattern string) (string, error)
}
