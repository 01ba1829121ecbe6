package types

import (
	"io/fs"
)

// FS is the filesystem interface required for myquest storage
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// Pather resolves where myquest keeps its files
type Pather interface {
	// DataDir returns the root directory for stored documents
	DataDir() string

	// ConfigDir returns the XDG config directory for myquest
	ConfigDir() string

	// StateDir returns the XDG state directory for myquest
	StateDir() string
}
