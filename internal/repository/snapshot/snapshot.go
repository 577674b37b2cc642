// Package snapshot keeps one immutable JSON copy of every persisted document
// version.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"archrecon/internal/types"
	"archrecon/internal/util/jsonutil"
)

var ErrNotFound = errors.New("snapshot: not found")

// Store writes and reads document versions.
type Store interface {
	Put(ctx context.Context, doc *types.Document) error
	Get(ctx context.Context, projectRef string, version int64) (*types.Document, error)
	// List returns the stored versions of a project in ascending order.
	List(ctx context.Context, projectRef string) ([]int64, error)
}

func objectKey(projectRef string, version int64) string {
	return strings.TrimSpace(projectRef) + "/v" + strconv.FormatInt(version, 10) + ".json"
}

// parseVersion reads the version back from a key relative to the project
// prefix.
func parseVersion(name string) (int64, bool) {
	if !strings.HasPrefix(name, "v") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "v"), ".json"), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func validate(projectRef string, version int64) error {
	if strings.TrimSpace(projectRef) == "" {
		return fmt.Errorf("snapshot: project reference is required")
	}
	if version <= 0 {
		return fmt.Errorf("snapshot: version must be positive, got %d", version)
	}
	return nil
}

func encode(doc *types.Document) ([]byte, error) {
	return jsonutil.MarshalNoEscapeIndent(doc, "", "  ")
}

func decode(raw []byte) (*types.Document, error) {
	var doc types.Document
	if err := jsonutil.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &doc, nil
}

func sortVersions(v []int64) []int64 {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	return v
}

// MemoryStore keeps encoded snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("snapshot: document is nil")
	}
	if err := validate(doc.ProjectRef, doc.Version); err != nil {
		return err
	}
	raw, err := encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(doc.ProjectRef, doc.Version)] = raw
	return nil
}

func (s *MemoryStore) Get(_ context.Context, projectRef string, version int64) (*types.Document, error) {
	if err := validate(projectRef, version); err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.objects[objectKey(projectRef, version)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (s *MemoryStore) List(_ context.Context, projectRef string) ([]int64, error) {
	prefix := strings.TrimSpace(projectRef) + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int64
	for k := range s.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if v, ok := parseVersion(strings.TrimPrefix(k, prefix)); ok {
			out = append(out, v)
		}
	}
	return sortVersions(out), nil
}
