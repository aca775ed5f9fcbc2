package fileops

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"parley/pkg/logging"
)

// ListOptions control directory listing.
type ListOptions struct {
	// Recursive traverses subdirectories depth-first.
	Recursive bool

	// Pattern filters results by base name using path.Match syntax
	// (e.g. "*.json"). Empty matches everything.
	Pattern string
}

// List returns metadata for files under relPath in lexical path order.
// Directories themselves are not included in the results. A missing
// directory yields an empty result, not an error.
func (f *FileOps) List(relPath string, opts ListOptions) ([]*Metadata, error) {
	abs, err := f.resolve(relPath)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return []*Metadata{}, nil
	}
	fsys := os.DirFS(abs)

	var results []*Metadata
	collect := func(rel string, info fs.FileInfo) error {
		if opts.Pattern != "" {
			matched, err := path.Match(opts.Pattern, filepath.Base(rel))
			if err != nil {
				return err
			}
			if !matched {
				return nil
			}
		}
		results = append(results, newMetadata(filepath.Join(relPath, rel), info))
		return nil
	}

	if opts.Recursive {
		err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return collect(filepath.FromSlash(p), info)
		})
	} else {
		var entries []fs.DirEntry
		entries, err = fs.ReadDir(fsys, ".")
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, infoErr := entry.Info()
				if infoErr != nil {
					err = infoErr
					break
				}
				if err = collect(entry.Name(), info); err != nil {
					break
				}
			}
		}
	}
	if err != nil {
		return nil, translatePathError("list", relPath, err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	logging.Debug(subsystem, "Listed %d files under %s (recursive=%t, pattern=%q)", len(results), relPath, opts.Recursive, opts.Pattern)
	return results, nil
}
