// Package discovery enumerates image files below a data directory.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is wrapped in the *fs.PathError returned when the walk root is a regular file.
var ErrNotDirectory = errors.New("not a directory")

// Walk returns a lazy depth-first sequence of the files below root whose
// extension equals ext exactly (".TIF" does not match ".tif").
// Directories are descended into whatever their name and are never yielded.
// Symlinks to directories are followed; a directory reached twice through
// links is walked only once.
// Paths are root joined with the relative path, in the order os.ReadDir
// reports entries. Each call to the returned sequence starts a fresh walk.
//
// A root or subdirectory that cannot be read yields a single non-nil error
// and ends the sequence.
func Walk(root, ext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield("", err)
			return
		}
		if !info.IsDir() {
			yield("", &fs.PathError{Op: "walk", Path: root, Err: ErrNotDirectory})
			return
		}
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			yield("", err)
			return
		}
		walkDir(root, ext, map[string]bool{resolved: true}, yield)
	}
}

// walkDir reports whether the consumer wants more values.
// visited holds the resolved paths of directories already entered.
func walkDir(dir, ext string, visited map[string]bool, yield func(string, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield("", err)
		return false
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			// a dangling link is treated like a file
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}
		if isDir {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				yield("", err)
				return false
			}
			if visited[resolved] {
				continue
			}
			visited[resolved] = true
			if !walkDir(path, ext, visited, yield) {
				return false
			}
			continue
		}
		if Suffix(entry.Name()) != ext {
			continue
		}
		if !yield(path, nil) {
			return false
		}
	}
	return true
}

// Suffix returns the final extension of name including the dot.
// A name whose only dot is the leading one (".TIF") has no suffix.
func Suffix(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	if trimmed == "" {
		return ""
	}
	return filepath.Ext(trimmed)
}

// Collect drains Walk into a slice.
func Collect(root, ext string) ([]string, error) {
	var paths []string
	for path, err := range Walk(root, ext) {
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
