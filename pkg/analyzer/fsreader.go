package analyzer

import (
	"io/fs"
	"path"
)

// skippedDirs are never descended into when scanning a local tree
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
}

// FSReader provides filesystem operations abstracted over fs.FS
type FSReader struct {
	fsys fs.FS
}

// NewFSReader creates a new FSReader for the given filesystem
func NewFSReader(fsys fs.FS) *FSReader {
	return &FSReader{fsys: fsys}
}

// Has checks if a regular file exists at the given path
func (r *FSReader) Has(p string) bool {
	fi, err := fs.Stat(r.fsys, p)
	return err == nil && !fi.IsDir()
}

// Read returns the content of a file, or nil when it cannot be read
func (r *FSReader) Read(p string) []byte {
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil
	}
	return data
}

// ScanTree walks the filesystem and returns all file paths, slash-separated
// and relative to the root. Unreadable entries are skipped.
func (r *FSReader) ScanTree() ([]string, error) {
	var files []string

	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			return nil
		}

		if d.IsDir() {
			if p != "." && skippedDirs[path.Base(p)] {
				return fs.SkipDir
			}
			return nil
		}

		files = append(files, p)
		return nil
	})

	return files, err
}
