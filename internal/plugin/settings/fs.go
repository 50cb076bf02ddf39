package settings

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the file operations the store performs, so tests and
// embedders can substitute their own backing.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data to path, creating it if necessary.
	WriteFile(path string, data []byte, perm os.FileMode) error
	// MkdirAll creates a directory path along with any missing parents.
	MkdirAll(path string, perm os.FileMode) error
	// Remove deletes the file at path.
	Remove(path string) error
	// Rename atomically replaces newpath with oldpath.
	Rename(oldpath, newpath string) error
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path.
func (OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// MkdirAll creates a directory path along with any missing parents.
func (OSFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove deletes the file at path.
func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

// Rename atomically replaces newpath with oldpath.
func (OSFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}
