package vault

import (
	"fmt"
	gopath "path"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory [Store] for tests. Handles are slash-separated
// paths rooted at "/". Per-handle faults can be injected to exercise the
// scanner's and engine's error paths.
//
// MemStore is safe for concurrent use.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]string
	dirs map[string]struct{}

	// ReadErr, WriteErr, and ListErr inject failures for specific
	// handles. Set before use.
	ReadErr  map[string]error
	WriteErr map[string]error
	ListErr  map[string]error

	// WriteLog records the handle of every successful write, in order.
	WriteLog []string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		docs: make(map[string]string),
		dirs: make(map[string]struct{}),
	}
}

// Put creates or replaces a document without logging a write.
func (m *MemStore) Put(handle, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[handle] = text
}

// MkDir registers an (possibly empty) directory.
func (m *MemStore) MkDir(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirs[handle] = struct{}{}
}

// Text returns a document's current content.
func (m *MemStore) Text(handle string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	text, ok := m.docs[handle]

	return text, ok
}

func (m *MemStore) Root() string {
	return "/"
}

func (m *MemStore) Name(handle string) string {
	return gopath.Base(handle)
}

func (m *MemStore) Resolve(parent, name string) string {
	return gopath.Join(parent, name)
}

func (m *MemStore) ListChildren(parent string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ListErr[parent]; err != nil {
		return nil, err
	}

	if !m.isDirLocked(parent) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parent)
	}

	seen := make(map[string]struct{})

	addChildren := func(path string) {
		rest, ok := childPath(parent, path)
		if !ok {
			return
		}

		segment, _, _ := strings.Cut(rest, "/")
		seen[gopath.Join(parent, segment)] = struct{}{}
	}

	for path := range m.docs {
		addChildren(path)
	}

	for path := range m.dirs {
		addChildren(path)
	}

	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}

	sort.Strings(children)

	return children, nil
}

func (m *MemStore) ReadText(handle string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ReadErr[handle]; err != nil {
		return "", err
	}

	text, ok := m.docs[handle]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, handle)
	}

	return text, nil
}

func (m *MemStore) WriteText(handle, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.WriteErr[handle]; err != nil {
		return err
	}

	m.docs[handle] = text
	m.WriteLog = append(m.WriteLog, handle)

	return nil
}

func (m *MemStore) DeleteEntry(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[handle]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, handle)
	}

	delete(m.docs, handle)

	return nil
}

// isDirLocked reports whether handle is the root, a registered directory,
// or an ancestor of any stored entry.
func (m *MemStore) isDirLocked(handle string) bool {
	if handle == "/" {
		return true
	}

	if _, ok := m.dirs[handle]; ok {
		return true
	}

	for path := range m.docs {
		if _, ok := childPath(handle, path); ok {
			return true
		}
	}

	return false
}

// childPath returns path relative to parent if path is strictly inside it.
func childPath(parent, path string) (string, bool) {
	prefix := parent
	if prefix != "/" {
		prefix += "/"
	}

	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || rest == "" {
		return "", false
	}

	return rest, true
}

var _ Store = (*MemStore)(nil)
