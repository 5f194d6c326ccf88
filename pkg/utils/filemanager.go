// =============================================================================
// Candidate Surveys - File Manager Utility
// =============================================================================
//
// This module provides the file-system helpers used by the generator:
//   - Logo discovery (regular files in one directory)
//   - Directory management for output paths
//   - Path component cleaning and collision handling
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// ListRegularFiles returns the regular files directly inside dir, sorted by
// name. Subdirectories, symlinks to directories and other special entries are
// skipped; nothing below dir is visited.
//
// PARAMETERS:
//   - dir: The directory to scan.
//
// RETURNS:
//   - The full paths of the files.
//   - An error if the directory cannot be read.
func ListRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat follows symlinks, so a link to a file counts as a file.
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// FileExists reports whether path names an existing file or directory.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureParentDir creates every missing directory above path.
//
// RETURNS:
//   - An error if a directory cannot be created.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// pathSeparators are replaced inside a single path component.
var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// CleanPathComponent makes value safe to use as one path component by
// replacing every path separator with "-". Values that would not name a
// directory of their own ("", "." and "..") become a run of "-" of the same
// length, at least one.
//
// EXAMPLE:
//
//	CleanPathComponent("City/Council") == "City-Council"
//	CleanPathComponent("..")           == "--"
func CleanPathComponent(value string) string {
	cleaned := pathSeparators.Replace(value)
	switch cleaned {
	case "", ".":
		return "-"
	case "..":
		return "--"
	}
	return cleaned
}

// PathSet tracks output paths already used in a batch and hands out
// non-colliding alternatives.
type PathSet struct {
	used map[string]bool
}

// NewPathSet creates an empty PathSet.
func NewPathSet() *PathSet {
	return &PathSet{used: make(map[string]bool)}
}

// Claim returns path if it has not been claimed yet. Otherwise it returns the
// first of "name-2.ext", "name-3.ext", ... that is free. The returned path is
// marked as used.
func (s *PathSet) Claim(path string) string {
	candidate := path
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for n := 2; s.used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}

	s.used[candidate] = true
	return candidate
}
