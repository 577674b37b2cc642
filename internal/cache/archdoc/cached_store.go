// Package archdoc fronts an architecture document repository with a TTL
// bounded LRU read cache.
package archdoc

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	archrepo "archrecon/internal/repository/archdoc"
	"archrecon/internal/types"
)

type Repository = archrepo.Repository

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 2048,
	}
}

// CachedStore caches Get results per project. Writes go to the origin first
// and then refresh the cached copy; a failed write drops it.
type CachedStore struct {
	origin Repository
	byRef  *expirable.LRU[string, *types.Document]
}

func NewCachedStore(origin Repository, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		byRef:  expirable.NewLRU[string, *types.Document](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Get(ctx context.Context, projectRef string) (*types.Document, bool, error) {
	if doc, ok := s.byRef.Get(key(projectRef)); ok {
		return doc.Clone(), true, nil
	}
	doc, ok, err := s.origin.Get(ctx, projectRef)
	if err != nil || !ok {
		return nil, ok, err
	}
	s.byRef.Add(key(projectRef), doc.Clone())
	return doc, true, nil
}

func (s *CachedStore) Upsert(ctx context.Context, doc *types.Document, fields []string) (*types.Document, error) {
	out, err := s.origin.Upsert(ctx, doc, fields)
	if err != nil {
		s.byRef.Remove(key(doc.ProjectRef))
		return nil, err
	}
	s.remember(out)
	return out, nil
}

func (s *CachedStore) CompareAndSwap(ctx context.Context, doc *types.Document) (*types.Document, error) {
	out, err := s.origin.CompareAndSwap(ctx, doc)
	if err != nil {
		// A conflict means the cached copy is stale.
		s.byRef.Remove(key(doc.ProjectRef))
		return nil, err
	}
	s.remember(out)
	return out, nil
}

func (s *CachedStore) Delete(ctx context.Context, projectRef string) (bool, error) {
	ok, err := s.origin.Delete(ctx, projectRef)
	s.byRef.Remove(key(projectRef))
	return ok, err
}

// Invalidate drops every cached document.
func (s *CachedStore) Invalidate() { s.byRef.Purge() }

func (s *CachedStore) remember(doc *types.Document) {
	if doc == nil {
		return
	}
	s.byRef.Add(key(doc.ProjectRef), doc.Clone())
}

func key(projectRef string) string { return strings.TrimSpace(projectRef) }
