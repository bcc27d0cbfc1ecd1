package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tonearm/internal/fileutil"
)

// Prune removes dir if it is empty, then walks toward the library
// root removing each parent that the removal emptied. It never removes
// the root itself, and it stops at the first non-empty directory.
func (ix *Index) Prune(dir string) error {
	dir = filepath.Clean(dir)
	root := ix.root

	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		empty, err := fileutil.DirIsEmpty(dir)
		if err != nil {
			if os.IsNotExist(err) {
				dir = filepath.Dir(dir)
				continue
			}
			return fmt.Errorf("check directory %s: %w", dir, err)
		}
		if !empty {
			return nil
		}
		// RemoveAll rather than Remove: an "empty" folder may still
		// hold hidden junk like .DS_Store.
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove empty directory %s: %w", dir, err)
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
