package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Listing struct {
	Name    string
	Path    string
	Entries []Entry
}

type Entry struct {
	Name    string
	Path    string
	RelPath string
	IsDir   bool
}

// List returns the entries of dir sorted by file name. RelPath is relative to
// root and always uses forward slashes.
func List(dir, root string) (Listing, error) {
	listing := Listing{
		Name:    filepath.Base(dir),
		Path:    dir,
		Entries: make([]Entry, 0),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return listing, fmt.Errorf("list dir %v: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return listing, fmt.Errorf("list dir %v: %w", dir, err)
		}

		listing.Entries = append(listing.Entries, Entry{
			Name:    entry.Name(),
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			IsDir:   entry.IsDir(),
		})
	}

	return listing, nil
}

// Files lists the regular files in dir whose extension is one of exts
// (case-insensitive), in file name order. A missing dir is not an error.
func Files(dir, root string, exts ...string) ([]Entry, error) {
	exists, err := Exists(dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	listing, err := List(dir, root)
	if err != nil {
		return nil, err
	}

	files := make([]Entry, 0, len(listing.Entries))
	for _, entry := range listing.Entries {
		if entry.IsDir || strings.HasPrefix(entry.Name, ".") {
			continue
		}
		if !hasExt(entry.Name, exts) {
			continue
		}
		files = append(files, entry)
	}

	return files, nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func Exists(path string) (bool, error) {
	_, err := os.Stat(path)

	if err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, fmt.Errorf("stat path %v: %w", path, err)
	}
}

func IsDir(path string) (bool, error) {
	stat, err := os.Stat(path)

	if err == nil {
		return stat.IsDir(), nil
	} else {
		return false, fmt.Errorf("stat path %v: %w", path, err)
	}
}
