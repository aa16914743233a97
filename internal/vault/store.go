// Package vault provides access to the hierarchical document store and the
// reminder scan over it.
//
// Handles are opaque strings owned by the store. They are stringifiable so
// they can travel inside notification payloads and compared for equality,
// but callers never interpret their structure beyond [Store.Name].
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/remind/internal/fs"
)

// ErrNotFound is returned when a handle does not resolve to an existing
// entry. The engine treats this specific failure on mutation as a cleanup
// signal rather than an error.
var ErrNotFound = errors.New("entry not found")

// DocumentExt is the file extension that marks an entry as a document.
const DocumentExt = ".md"

const (
	filePerms = 0o600
	dirPerms  = 0o755
)

// Store is the narrow interface the engine reads and writes documents
// through. The backing store is externally owned; the engine never locks it.
type Store interface {
	// Root returns the handle of the store root.
	Root() string

	// Name returns the display name of the entry behind handle.
	Name(handle string) string

	// Resolve returns the handle for a named child of parent. The child
	// does not have to exist.
	Resolve(parent, name string) string

	// ListChildren returns the handles of parent's direct children.
	ListChildren(parent string) ([]string, error)

	// ReadText returns the full text of the document behind handle.
	// Returns [ErrNotFound] if the entry is missing.
	ReadText(handle string) (string, error)

	// WriteText replaces the document behind handle atomically, creating
	// it if needed.
	WriteText(handle, text string) error

	// DeleteEntry removes the entry behind handle.
	DeleteEntry(handle string) error
}

// DirStore implements [Store] over a filesystem directory. Handles are
// absolute paths.
type DirStore struct {
	fsys fs.FS
	root string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(fsys fs.FS, dir string) *DirStore {
	return &DirStore{fsys: fsys, root: dir}
}

func (s *DirStore) Root() string {
	return s.root
}

// Name returns the base name of the path behind handle.
func (s *DirStore) Name(handle string) string {
	return filepath.Base(handle)
}

func (s *DirStore) Resolve(parent, name string) string {
	return filepath.Join(parent, name)
}

func (s *DirStore) ListChildren(parent string) ([]string, error) {
	entries, err := s.fsys.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}

	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, filepath.Join(parent, entry.Name()))
	}

	return children, nil
}

func (s *DirStore) ReadText(handle string) (string, error) {
	data, err := s.fsys.ReadFile(handle)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, handle)
		}

		return "", fmt.Errorf("read %s: %w", handle, err)
	}

	return string(data), nil
}

func (s *DirStore) WriteText(handle, text string) error {
	err := s.fsys.MkdirAll(filepath.Dir(handle), dirPerms)
	if err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	err = s.fsys.WriteFileAtomic(handle, []byte(text), filePerms)
	if err != nil {
		return fmt.Errorf("write %s: %w", handle, err)
	}

	return nil
}

func (s *DirStore) DeleteEntry(handle string) error {
	err := s.fsys.Remove(handle)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, handle)
		}

		return fmt.Errorf("delete %s: %w", handle, err)
	}

	return nil
}

// DocumentName derives the display name of a document handle: the base name
// without the document extension.
func DocumentName(store Store, handle string) string {
	return strings.TrimSuffix(store.Name(handle), DocumentExt)
}
