package vfs

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// OSFS implements VFS on the operating system's file system below a root
// directory.
type OSFS struct {
	root string
}

// NewOSFS creates a file system rooted at dir.
func NewOSFS(dir string) *OSFS {
	return &OSFS{root: filepath.Clean(dir)}
}

// Ensure OSFS implements VFS.
var _ VFS = (*OSFS)(nil)

// Root returns the root directory.
func (f *OSFS) Root() string { return f.root }

// Resolve maps a library path to an OS path below the root.
func (f *OSFS) Resolve(p string) string {
	return filepath.Join(f.root, filepath.FromSlash(cleanRel(p)))
}

// Rel maps an OS path below the root back to a library path.
func (f *OSFS) Rel(osPath string) (string, error) {
	rel, err := filepath.Rel(f.root, osPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ReadFile reads the entire file content.
func (f *OSFS) ReadFile(p string) ([]byte, error) {
	return os.ReadFile(f.Resolve(p))
}

// WriteFile writes data to a file, creating it if necessary.
func (f *OSFS) WriteFile(p string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(f.Resolve(p), data, perm)
}

// Stat returns file information.
func (f *OSFS) Stat(p string) (FileInfo, error) {
	info, err := os.Stat(f.Resolve(p))
	if err != nil {
		return FileInfo{}, err
	}
	return fromOS(cleanRel(p), info), nil
}

// ReadDir returns the entries of a directory sorted by name.
func (f *OSFS) ReadDir(p string) ([]FileInfo, error) {
	entries, err := os.ReadDir(f.Resolve(p))
	if err != nil {
		return nil, err
	}

	dir := cleanRel(p)
	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue // Skip entries we can't stat
		}
		infos = append(infos, fromOS(path.Join(dir, entry.Name()), info))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// MkdirAll creates a directory and all parent directories.
func (f *OSFS) MkdirAll(p string, perm fs.FileMode) error {
	return os.MkdirAll(f.Resolve(p), perm)
}

// Remove removes a file or empty directory.
func (f *OSFS) Remove(p string) error {
	return os.Remove(f.Resolve(p))
}

// Exists returns true if the path exists.
func (f *OSFS) Exists(p string) bool {
	_, err := os.Stat(f.Resolve(p))
	return err == nil
}

func fromOS(p string, info os.FileInfo) FileInfo {
	return NewFileInfo(p, info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir())
}

// cleanRel normalizes a library path: slash-separated, no leading slash.
// Paths cannot climb above the root.
func cleanRel(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimPrefix(p, "/")
}
