package artifact

import (
	"fmt"

	"parley/internal/api"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

const subsystem = "ArtifactStore"

// Store persists the project document at a fixed path through the file
// primitives, honoring the backup-on-update policy.
type Store struct {
	files  *fileops.FileOps
	path   string
	backup bool
}

// NewStore creates a store for the document at path. backupOnUpdate takes a
// timestamped backup of the previous revision on every overwrite.
func NewStore(files *fileops.FileOps, path string, backupOnUpdate bool) *Store {
	return &Store{files: files, path: path, backup: backupOnUpdate}
}

// Path returns the root-relative document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the current document. A missing document is a
// legitimate empty result: Load returns nil, nil.
func (s *Store) Load() (*Document, error) {
	content, _, err := s.files.Read(s.path)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read project document %s: %w", s.path, err)
	}
	return Parse(content)
}

// Save renders doc and writes it atomically, replacing any previous
// revision. With backups enabled the previous revision is preserved first.
func (s *Store) Save(doc *Document) error {
	rendered, err := Render(doc)
	if err != nil {
		return err
	}

	_, err = s.files.Update(s.path, func([]byte) ([]byte, error) {
		return rendered, nil
	}, fileops.UpdateOptions{Backup: s.backup})
	if err != nil {
		return fmt.Errorf("failed to write project document %s: %w", s.path, err)
	}

	logging.Info(subsystem, "Wrote project document %s (stage=%s)", s.path, doc.Meta.Stage)
	return nil
}
