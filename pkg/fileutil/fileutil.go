// Package fileutil provides file system utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive searches for a file with the given name in the specified directory.
// The search is case-insensitive, which is useful for cross-platform compatibility.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "Hello.BGN")
//	// Will find "hello.bgn", "HELLO.BGN", "Hello.bgn", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// ResolveScript returns the path of the script to run.
// パスがそのまま存在すればそれを返し、なければ同じディレクトリ内を大文字小文字を無視して探す。
func ResolveScript(path string) (string, error) {
	if path == "" {
		return "", errors.New("no script file given")
	}

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}
		return path, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	found, findErr := FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
	if findErr != nil {
		return "", fmt.Errorf("script not found: %s: %w", path, fs.ErrNotExist)
	}
	return found, nil
}
