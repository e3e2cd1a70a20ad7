package dub

import (
	"path/filepath"

	"github.com/karrick/godirwalk"
)

// dirHasEntries reports whether dir exists and contains at least one entry.
// It is the pre-flight check the dependency graph builder runs before asking
// the package manager to wrap a local-path selection, using godirwalk
// instead of filepath.Walk for its lower-allocation directory listing: the
// walk stops at the first child node, so the cost is one directory read
// regardless of how large the package tree is.
func dirHasEntries(dir string) bool {
	found := false
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if osPathname == dir {
				return nil
			}
			found = true
			return filepath.SkipDir
		},
	})
	if err != nil {
		return false
	}
	return found
}
