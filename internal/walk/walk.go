// Package walk discovers image files under a directory tree for the hash
// subcommand. It is a trimmed, single-goroutine descendant of the teacher's
// concurrent directory scanner: the hash subcommand fingerprints the files
// it finds one at a time, so the walk itself does not need to be parallel.
package walk

import (
	"os"
	"path/filepath"
	"strings"
)

// Filter decides which files and directories a walk should visit.
type Filter struct {
	extensions map[string]bool
	excludeDir map[string]bool
	maxSize    int64
}

// DefaultFilter matches the common raster image formats and skips the
// directory names the teacher's scanner excludes.
func DefaultFilter() *Filter {
	f := &Filter{
		extensions: map[string]bool{
			".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
			".tiff": true, ".tif": true, ".bmp": true, ".gif": true,
		},
		excludeDir: map[string]bool{
			".git": true, ".svn": true, ".hg": true,
			"node_modules": true, "__pycache__": true,
			"thumbs": true, "thumbnails": true, ".thumbnails": true,
		},
		maxSize: 500 * 1024 * 1024,
	}
	return f
}

func (f *Filter) allowsDir(name string) bool {
	return !f.excludeDir[strings.ToLower(name)]
}

func (f *Filter) allowsFile(path string, size int64) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !f.extensions[ext] {
		return false
	}
	return size <= f.maxSize
}

// ImagePaths walks root and returns every file the filter accepts, in
// filesystem walk order (implementation-defined, but stable for one call).
func ImagePaths(root string, filter *Filter) ([]string, error) {
	if filter == nil {
		filter = DefaultFilter()
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && !filter.allowsDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.allowsFile(path, info.Size()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
