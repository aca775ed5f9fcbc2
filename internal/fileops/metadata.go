package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"time"
)

// EncodingUTF8 is the encoding tag attached to textual file metadata. The
// runtime persists UTF-8 text exclusively; the tag exists so that callers
// never have to guess.
const EncodingUTF8 = "utf-8"

// Metadata describes a file beneath the FileOps root. It is returned by
// every read, list, and stat operation and is never persisted separately
// from the underlying file.
type Metadata struct {
	// Path is the namespace-relative path of the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Created is the creation instant. Go cannot portably read birth
	// times, so this reports the modification time on platforms without
	// birth time support.
	Created time.Time `json:"created"`

	// Modified is the last modification instant.
	Modified time.Time `json:"modified"`

	// Encoding is the content encoding tag.
	Encoding string `json:"encoding"`

	// Checksum is the hex-encoded SHA-256 of the content. Populated only
	// by operations that already hold the content in memory (Read).
	Checksum string `json:"checksum,omitempty"`
}

// newMetadata builds a Metadata record from directory entry info.
func newMetadata(relPath string, info fs.FileInfo) *Metadata {
	return &Metadata{
		Path:     relPath,
		Size:     info.Size(),
		Created:  info.ModTime(),
		Modified: info.ModTime(),
		Encoding: EncodingUTF8,
	}
}

// checksumOf returns the hex-encoded SHA-256 digest of content.
func checksumOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
