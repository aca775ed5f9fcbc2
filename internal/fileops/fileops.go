package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"parley/internal/api"
	"parley/pkg/logging"
)

const subsystem = "FileOps"

// DefaultMaxFileSize is the size limit applied to reads and writes when no
// explicit limit is configured (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// FileOps is the exclusive owner of byte-level file operations beneath a
// root directory. Construct one per runtime root and pass it explicitly to
// every component that needs filesystem access.
type FileOps struct {
	root        string
	maxFileSize int64
	backupDir   string
}

// Option configures a FileOps instance.
type Option func(*FileOps)

// WithMaxFileSize overrides the maximum file size accepted by reads and
// writes. Values <= 0 are ignored.
func WithMaxFileSize(n int64) Option {
	return func(f *FileOps) {
		if n > 0 {
			f.maxFileSize = n
		}
	}
}

// WithBackupDir overrides the root-relative directory used for update
// backups. Defaults to "backups".
func WithBackupDir(dir string) Option {
	return func(f *FileOps) {
		if dir != "" {
			f.backupDir = dir
		}
	}
}

// New creates a FileOps instance rooted at root, creating the root directory
// if it does not exist.
func New(root string, opts ...Option) (*FileOps, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, translatePathError("create root", abs, err)
	}

	f := &FileOps{
		root:        abs,
		maxFileSize: DefaultMaxFileSize,
		backupDir:   "backups",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the absolute root directory this instance is confined to.
func (f *FileOps) Root() string {
	return f.root
}

// resolve maps a namespace-relative path to an absolute path beneath the
// root, rejecting absolute paths and traversal outside the root.
func (f *FileOps) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", api.NewValidationError(relPath, "path cannot be empty")
	}
	if filepath.IsAbs(relPath) {
		return "", api.NewValidationError(relPath, "absolute paths are not allowed")
	}

	abs := filepath.Join(f.root, filepath.Clean(relPath))
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(filepath.Separator)) {
		return "", api.NewValidationError(relPath, "path escapes the runtime root")
	}
	return abs, nil
}

// Read returns the content and metadata of the file at relPath. It fails
// with a NotFoundError if the file is absent, a PermissionError if it is
// inaccessible, and a ValidationError if it exceeds the configured maximum
// size.
func (f *FileOps) Read(relPath string) ([]byte, *Metadata, error) {
	abs, err := f.resolve(relPath)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, translatePathError("read", relPath, err)
	}
	if info.IsDir() {
		return nil, nil, api.NewValidationError(relPath, "target is a directory")
	}
	if info.Size() > f.maxFileSize {
		return nil, nil, api.NewValidationError(relPath, "file size %d exceeds maximum %d", info.Size(), f.maxFileSize)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, translatePathError("read", relPath, err)
	}

	meta := newMetadata(relPath, info)
	meta.Checksum = checksumOf(content)

	logging.Debug(subsystem, "Read %d bytes from %s", len(content), relPath)
	return content, meta, nil
}

// Stat returns metadata for the file at relPath without reading its content.
func (f *FileOps) Stat(relPath string) (*Metadata, error) {
	abs, err := f.resolve(relPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, translatePathError("stat", relPath, err)
	}

	logging.Debug(subsystem, "Stat %s (%d bytes)", relPath, info.Size())
	return newMetadata(relPath, info), nil
}

// Exists reports whether a file exists at relPath.
func (f *FileOps) Exists(relPath string) bool {
	abs, err := f.resolve(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Delete removes the file at relPath. It fails with a NotFoundError if the
// target is absent and with ErrDirectoryDelete if the target is a directory.
func (f *FileOps) Delete(relPath string) error {
	abs, err := f.resolve(relPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return translatePathError("delete", relPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot delete %s: %w", relPath, api.ErrDirectoryDelete)
	}

	if err := os.Remove(abs); err != nil {
		return translatePathError("delete", relPath, err)
	}

	logging.Info(subsystem, "Deleted %s", relPath)
	return nil
}

// EnsureDir creates the directory at relPath (and any parents) beneath the
// root.
func (f *FileOps) EnsureDir(relPath string) error {
	abs, err := f.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return translatePathError("create directory", relPath, err)
	}
	return nil
}

// translatePathError converts a raw filesystem error into the runtime error
// taxonomy, attaching operation and path context.
func translatePathError(operation, relPath string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s failed: %w", operation, api.NewFileNotFoundError(relPath))
	case errors.Is(err, fs.ErrPermission):
		return api.NewPermissionError(operation, relPath, err)
	default:
		return fmt.Errorf("%s failed for %s: %w", operation, relPath, err)
	}
}
