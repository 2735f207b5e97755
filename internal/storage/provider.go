// Package storage defines the vault file-system boundary.
//
// The core never walks directories itself: every multi-document
// operation works off the path set returned by List.
package storage

// Provider is the interface for vault file operations.
// All paths are relative to the vault root.
type Provider interface {
	// List enumerates every Markdown document under the vault root,
	// recursively, in a stable order.
	List() ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of the file at path.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a file is present at path.
	Exists(path string) bool
	// Root returns the absolute vault root directory.
	Root() string
}
