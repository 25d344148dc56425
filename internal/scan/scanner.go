package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ExportExt is the extension of chat export files picked up from directories.
const ExportExt = ".txt"

// Expand resolves files, directories and glob patterns into a sorted,
// deduplicated list of absolute paths. Directories are walked for *.txt files.
// Arguments that match nothing are kept so the caller can report them as
// missing.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			add(arg)
			continue
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				add(m)
				continue
			}
			files, err := ScanRoot(m)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", m, err)
			}
			for _, f := range files {
				add(f.Path)
			}
		}
	}

	sort.Strings(result)
	return result, nil
}

// ScanRoot walks root for chat export files.
func ScanRoot(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ExportExt) {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}
