package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Carbon-X-DAO/AvatarMix/fsutil"
)

// Extensions lists the asset file types the loader can decode.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// Source is where a Loader discovers and reads assets.
type Source interface {
	// Locators returns the ordered locators of every asset of slice s. The
	// order must be the same for the same asset set.
	Locators(s Slice) ([]string, error)
	Open(locator string) (io.ReadCloser, error)
}

// DirSource reads assets from <Root>/<slice name>/, ordered by file name.
type DirSource struct {
	Root string
}

func (d DirSource) Locators(s Slice) ([]string, error) {
	files, err := fsutil.Files(filepath.Join(d.Root, s.String()), d.Root, Extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s assets: %w", s, err)
	}

	locators := make([]string, 0, len(files))
	for _, f := range files {
		locators = append(locators, f.RelPath)
	}
	return locators, nil
}

func (d DirSource) Open(locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(locator)))
	if err != nil {
		return nil, fmt.Errorf("failed to open asset %s: %w", locator, err)
	}
	return f, nil
}
