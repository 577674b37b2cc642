package archdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"archrecon/internal/types"
)

// DiskStore is a MemoryStore persisted to a single JSON file after each write.
type DiskStore struct {
	path string
	mem  *MemoryStore

	loadOnce sync.Once
	loadErr  error
	// writeMu serializes write-then-save so the file never lags a newer write.
	writeMu sync.Mutex
}

func NewDiskStore(path string) *DiskStore {
	return &DiskStore{path: path, mem: NewMemoryStore()}
}

func (s *DiskStore) ensureLoaded() error {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			s.loadErr = err
			return
		}
		var rows []*types.Document
		if err := json.Unmarshal(b, &rows); err != nil {
			s.loadErr = fmt.Errorf("archdoc: decode %s: %w", s.path, err)
			return
		}
		s.mem.load(rows)
	})
	return s.loadErr
}

func (s *DiskStore) save() error {
	rows := s.mem.snapshot()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProjectRef < rows[j].ProjectRef })
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *DiskStore) Get(ctx context.Context, projectRef string) (*types.Document, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, false, err
	}
	return s.mem.Get(ctx, projectRef)
}

func (s *DiskStore) Upsert(ctx context.Context, doc *types.Document, fields []string) (*types.Document, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	out, err := s.mem.Upsert(ctx, doc, fields)
	if err != nil {
		return nil, err
	}
	return out, s.save()
}

func (s *DiskStore) CompareAndSwap(ctx context.Context, doc *types.Document) (*types.Document, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	out, err := s.mem.CompareAndSwap(ctx, doc)
	if err != nil {
		return nil, err
	}
	return out, s.save()
}

func (s *DiskStore) Delete(ctx context.Context, projectRef string) (bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	ok, err := s.mem.Delete(ctx, projectRef)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.save()
}
