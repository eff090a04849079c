package remote

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used in tests and for offline runs.
// Err, when set, makes every operation fail with it (remote outage
// simulation).
type MemStore struct {
	mu   sync.Mutex
	docs map[string]Document

	Err error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]Document)}
}

// Get fetches a document; a missing document is (nil, nil).
func (s *MemStore) Get(_ context.Context, path Path) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	doc, ok := s.docs[path.String()]
	if !ok {
		return nil, nil
	}
	return cloneDoc(doc), nil
}

// Set stores a document with full-overwrite semantics.
func (s *MemStore) Set(_ context.Context, path Path, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.docs[path.String()] = cloneDoc(doc)
	return nil
}

// Delete removes a document if present.
func (s *MemStore) Delete(_ context.Context, path Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.docs, path.String())
	return nil
}

// ListAll returns every document under the collection path, ordered by key
// for determinism.
func (s *MemStore) ListAll(_ context.Context, path Path) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	prefix := path.String() + "/"
	keys := make([]string, 0)
	for key := range s.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		docs = append(docs, cloneDoc(s.docs[key]))
	}
	return docs, nil
}

// Len returns the number of stored documents.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
