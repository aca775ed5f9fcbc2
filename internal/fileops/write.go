package fileops

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"parley/internal/api"
	"parley/pkg/logging"
)

// WriteResult reports the outcome of a write operation.
type WriteResult struct {
	// Success is true when the content reached its final path.
	Success bool `json:"success"`

	// BytesWritten is the number of bytes persisted, after normalization.
	BytesWritten int64 `json:"bytesWritten"`

	// FinalPath is the namespace-relative path the content ended up at.
	FinalPath string `json:"finalPath"`
}

// WriteOptions control the write path.
type WriteOptions struct {
	// Atomic selects the temp-file-then-rename write path. This is the
	// default; disable it only for content where torn writes are
	// acceptable (e.g. append-style logs owned by a single process).
	Atomic bool
}

// DefaultWriteOptions returns the options applied by Write.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Atomic: true}
}

// UpdateOptions control the read-transform-write path.
type UpdateOptions struct {
	// Backup writes a timestamped copy of the current content to the
	// backup directory before the transform is applied.
	Backup bool
}

// Write atomically persists content at relPath, normalizing line endings and
// guaranteeing a single trailing newline. See WriteWithOptions.
func (f *FileOps) Write(relPath string, content []byte) (*WriteResult, error) {
	return f.WriteWithOptions(relPath, content, DefaultWriteOptions())
}

// WriteWithOptions persists content at relPath.
//
// Content containing a null byte is rejected before any write attempt.
// Normalized content exceeding the configured maximum size is also rejected.
// Parent directories are created as needed.
func (f *FileOps) WriteWithOptions(relPath string, content []byte, opts WriteOptions) (*WriteResult, error) {
	abs, err := f.resolve(relPath)
	if err != nil {
		return nil, err
	}

	if bytes.IndexByte(content, 0) >= 0 {
		return nil, api.NewValidationError(relPath, "content contains a null byte; binary content is not allowed")
	}

	normalized := normalizeContent(content)
	if int64(len(normalized)) > f.maxFileSize {
		return nil, api.NewValidationError(relPath, "content size %d exceeds maximum %d", len(normalized), f.maxFileSize)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, translatePathError("write", relPath, err)
	}

	if opts.Atomic {
		if err := f.writeAtomic(abs, relPath, normalized); err != nil {
			return nil, err
		}
	} else {
		if err := os.WriteFile(abs, normalized, 0644); err != nil {
			return nil, translatePathError("write", relPath, err)
		}
	}

	logging.Debug(subsystem, "Wrote %d bytes to %s (atomic=%t)", len(normalized), relPath, opts.Atomic)
	return &WriteResult{
		Success:      true,
		BytesWritten: int64(len(normalized)),
		FinalPath:    relPath,
	}, nil
}

// writeAtomic writes content to a sibling temp file, verifies the on-disk
// size, and renames it over abs. On any failure after temp-file creation the
// temp file is removed before the error is returned.
func (f *FileOps) writeAtomic(abs, relPath string, content []byte) error {
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%s", base, time.Now().UnixNano(), uuid.NewString()[:8]))

	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return translatePathError("write", relPath, err)
	}

	// Verify the temp file landed in full before making it visible.
	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return translatePathError("write", relPath, err)
	}
	if info.Size() != int64(len(content)) {
		os.Remove(tmpPath)
		return api.NewValidationError(relPath, "write verification failed: temp file has %d bytes, expected %d", info.Size(), len(content))
	}

	if err := os.Rename(tmpPath, abs); err != nil {
		os.Remove(tmpPath)
		return translatePathError("write", relPath, err)
	}
	return nil
}

// Update reads the current content of relPath, optionally writes a
// timestamped backup, applies transform, and atomically writes the result.
// A missing file is treated as empty input to the transform and no backup is
// taken for it.
func (f *FileOps) Update(relPath string, transform func([]byte) ([]byte, error), opts UpdateOptions) (*WriteResult, error) {
	var current []byte
	if f.Exists(relPath) {
		var err error
		current, _, err = f.Read(relPath)
		if err != nil {
			return nil, fmt.Errorf("update of %s failed: %w", relPath, err)
		}

		if opts.Backup {
			if err := f.writeBackup(relPath, current); err != nil {
				return nil, fmt.Errorf("update of %s failed: %w", relPath, err)
			}
		}
	}

	updated, err := transform(current)
	if err != nil {
		return nil, fmt.Errorf("update transform for %s failed: %w", relPath, err)
	}

	result, err := f.Write(relPath, updated)
	if err != nil {
		return nil, err
	}

	logging.Info(subsystem, "Updated %s (%d -> %d bytes)", relPath, len(current), result.BytesWritten)
	return result, nil
}

// writeBackup stores a timestamped copy of content under the backup
// directory, mirroring the original relative path.
func (f *FileOps) writeBackup(relPath string, content []byte) error {
	stamp := time.Now().UTC().Format("20060102-150405")
	backupRel := filepath.Join(f.backupDir, fmt.Sprintf("%s.%s.bak", relPath, stamp))

	if _, err := f.Write(backupRel, content); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	logging.Debug(subsystem, "Backed up %s to %s", relPath, backupRel)
	return nil
}

// normalizeContent converts CRLF and bare CR line endings to LF and
// guarantees exactly one trailing newline. Empty content stays empty.
func normalizeContent(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	normalized = bytes.ReplaceAll(normalized, []byte("\r"), []byte("\n"))

	normalized = bytes.TrimRight(normalized, "\n")
	return append(normalized, '\n')
}
