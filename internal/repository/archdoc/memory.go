package archdoc

import (
	"context"
	"sync"
	"time"

	"archrecon/internal/types"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*types.Document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*types.Document), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, projectRef string) (*types.Document, bool, error) {
	ref, err := normalizeRef(projectRef)
	if err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[ref]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (s *MemoryStore) Upsert(_ context.Context, doc *types.Document, fields []string) (*types.Document, error) {
	ref, err := normalizeRef(doc.ProjectRef)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := upsertInto(s.byID[ref], doc, fields, s.now().UTC())
	out.ProjectRef = ref
	s.byID[ref] = out
	return out.Clone(), nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, doc *types.Document) (*types.Document, error) {
	ref, err := normalizeRef(doc.ProjectRef)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := swapInto(s.byID[ref], doc, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.byID[ref] = out
	return out.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, projectRef string) (bool, error) {
	ref, err := normalizeRef(projectRef)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[ref]
	delete(s.byID, ref)
	return ok, nil
}

func (s *MemoryStore) snapshot() []*types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Document, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, d.Clone())
	}
	return out
}

func (s *MemoryStore) load(docs []*types.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if d == nil {
			continue
		}
		ref, err := normalizeRef(d.ProjectRef)
		if err != nil {
			continue
		}
		d.ProjectRef = ref
		s.byID[ref] = d
	}
}
