// Package architecture persists reconciled architecture documents. It owns
// the write path around the pure reconcile package: per-project locking,
// optimistic version checks, snapshots and the generator flow.
package architecture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"archrecon/internal/architecture/reconcile"
	"archrecon/internal/llm"
	"archrecon/internal/logging"
	"archrecon/internal/repository/archdoc"
	"archrecon/internal/repository/snapshot"
	"archrecon/internal/types"
)

var (
	// ErrNoGenerator is returned by GenerateAndMerge when no generator is wired.
	ErrNoGenerator = errors.New("architecture: no text generator configured")
	// ErrSnapshotsDisabled is returned by the snapshot readers when no
	// snapshot store is wired.
	ErrSnapshotsDisabled = errors.New("architecture: snapshots are disabled")
)

const defaultMaxAttempts = 5

type Service struct {
	store       archdoc.Repository
	snapshots   snapshot.Store
	gen         llm.Generator
	maxAttempts int
	log         *slog.Logger
	locks       *refLocks
}

type Option func(*Service)

func WithSnapshots(s snapshot.Store) Option { return func(svc *Service) { svc.snapshots = s } }

func WithGenerator(g llm.Generator) Option { return func(svc *Service) { svc.gen = g } }

// WithMaxAttempts bounds the version check retries of one merge.
func WithMaxAttempts(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

func New(store archdoc.Repository, opts ...Option) *Service {
	s := &Service{
		store:       store,
		maxAttempts: defaultMaxAttempts,
		log:         logging.For("architecture"),
		locks:       newRefLocks(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateResult is the stored document after a create or full replace.
type CreateResult struct {
	Document *types.Document
	// Present lists the fields the payload replaced.
	Present []string
	Dropped map[string]int
}

// Create normalizes a whole architecture payload and replaces the fields it
// carries with one atomic upsert. Fields it does not carry keep their values.
func (s *Service) Create(ctx context.Context, projectRef, author string, payload any) (CreateResult, error) {
	ref, err := requireRef(projectRef)
	if err != nil {
		return CreateResult{}, err
	}
	b, err := reconcile.BuildDocument(ref, author, payload)
	if err != nil {
		s.log.Info("architecture create rejected", "project", ref, "error", err)
		return CreateResult{}, err
	}
	for field, n := range b.Dropped {
		s.log.Warn("dropped items without identity", "project", ref, "field", field, "count", n)
	}
	s.log.Debug("architecture stage", "project", ref, "stage", reconcile.StageNormalized, "fields", b.Present)

	saved, err := s.store.Upsert(ctx, b.Document, b.Present)
	if err != nil {
		return CreateResult{}, fmt.Errorf("architecture: upsert %s: %w", ref, err)
	}
	saved.CompletenessScore = reconcile.Score(saved)
	s.log.Info("architecture stage", "project", ref, "stage", reconcile.StagePersisted, "version", saved.Version)
	s.snapshot(ctx, saved)
	return CreateResult{Document: saved, Present: b.Present, Dropped: b.Dropped}, nil
}

type MergeRequest struct {
	ProjectRef string
	Section    string
	Payload    any
	Author     string
}

type MergeResult struct {
	Document *types.Document
	Result   reconcile.Result
	// Attempts counts the version checks the write needed.
	Attempts int
}

// Merge applies a partial section update. Writers of one project are
// serialized in process; the store's version check catches writers in other
// processes and the merge is recomputed from a fresh read.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	ref, err := requireRef(req.ProjectRef)
	if err != nil {
		return MergeResult{}, err
	}
	unlock := s.locks.lock(ref)
	defer unlock()

	log := s.log.With("project", ref, "section", req.Section)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return MergeResult{}, err
		}
		doc, ok, err := s.store.Get(ctx, ref)
		if err != nil {
			return MergeResult{}, fmt.Errorf("architecture: load %s: %w", ref, err)
		}
		if !ok {
			return MergeResult{}, &reconcile.DocumentNotFoundError{ProjectRef: ref, Stage: reconcile.StageReceived}
		}
		log.Debug("architecture stage", "stage", reconcile.StageReceived, "version", doc.Version)

		res, err := reconcile.Reconcile(req.Section, req.Payload, doc)
		if err != nil {
			log.Info("architecture merge rejected", "error", err)
			return MergeResult{}, err
		}
		log.Debug("architecture stage", "stage", reconcile.StageMerged,
			"items", res.ItemCount, "added", res.Summary.Added, "updated", res.Summary.Updated)

		next := res.Apply(doc)
		if a := strings.TrimSpace(req.Author); a != "" {
			next.UpdatedBy = a
		}
		next.CompletenessScore = reconcile.Score(next)

		saved, err := s.store.CompareAndSwap(ctx, next)
		switch {
		case errors.Is(err, archdoc.ErrVersionConflict):
			log.Warn("architecture version conflict, retrying", "attempt", attempt, "version", doc.Version)
			continue
		case errors.Is(err, archdoc.ErrNotFound):
			return MergeResult{}, &reconcile.DocumentNotFoundError{ProjectRef: ref, Stage: reconcile.StageMerged}
		case err != nil:
			return MergeResult{}, fmt.Errorf("architecture: save %s: %w", ref, err)
		}
		saved.CompletenessScore = reconcile.Score(saved)
		log.Info("architecture stage", "stage", reconcile.StagePersisted,
			"version", saved.Version, "field", res.Field, res.CountLabel(), res.ItemCount)
		s.snapshot(ctx, saved)
		return MergeResult{Document: saved, Result: res, Attempts: attempt}, nil
	}
	return MergeResult{}, fmt.Errorf("architecture: merge %s after %d attempts: %w", ref, s.maxAttempts, archdoc.ErrVersionConflict)
}

// Get returns the stored document with its completeness score recomputed.
func (s *Service) Get(ctx context.Context, projectRef string) (*types.Document, bool, error) {
	ref, err := requireRef(projectRef)
	if err != nil {
		return nil, false, err
	}
	doc, ok, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, false, fmt.Errorf("architecture: load %s: %w", ref, err)
	}
	if !ok {
		return nil, false, nil
	}
	doc.CompletenessScore = reconcile.Score(doc)
	return doc, true, nil
}

func (s *Service) Delete(ctx context.Context, projectRef string) (bool, error) {
	ref, err := requireRef(projectRef)
	if err != nil {
		return false, err
	}
	unlock := s.locks.lock(ref)
	defer unlock()
	ok, err := s.store.Delete(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("architecture: delete %s: %w", ref, err)
	}
	s.log.Info("architecture deleted", "project", ref, "existed", ok)
	return ok, nil
}

// Snapshots lists the persisted versions of a project.
func (s *Service) Snapshots(ctx context.Context, projectRef string) ([]int64, error) {
	if s.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	ref, err := requireRef(projectRef)
	if err != nil {
		return nil, err
	}
	return s.snapshots.List(ctx, ref)
}

// Snapshot reads one persisted version.
func (s *Service) Snapshot(ctx context.Context, projectRef string, version int64) (*types.Document, error) {
	if s.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	ref, err := requireRef(projectRef)
	if err != nil {
		return nil, err
	}
	return s.snapshots.Get(ctx, ref, version)
}

// snapshot is best effort; the document is already persisted.
func (s *Service) snapshot(ctx context.Context, doc *types.Document) {
	if s.snapshots == nil || doc == nil {
		return
	}
	if err := s.snapshots.Put(ctx, doc); err != nil {
		s.log.Warn("snapshot write failed", "project", doc.ProjectRef, "version", doc.Version, "error", err)
	}
}

func requireRef(projectRef string) (string, error) {
	ref := strings.TrimSpace(projectRef)
	if ref == "" {
		return "", &reconcile.ValidationError{Field: "projectRef", Reason: "is required", Stage: reconcile.StageReceived}
	}
	return ref, nil
}
