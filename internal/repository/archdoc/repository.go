// Package archdoc persists one architecture document per project.
package archdoc

import (
	"context"
	"errors"
	"strings"
	"time"

	"archrecon/internal/types"
)

var (
	// ErrVersionConflict is returned by CompareAndSwap when the stored version
	// moved since the caller read it.
	ErrVersionConflict = errors.New("archdoc: version conflict")
	// ErrNotFound is returned by CompareAndSwap when the document is gone.
	ErrNotFound = errors.New("archdoc: document not found")
	// ErrInvalidProject rejects a blank project reference.
	ErrInvalidProject = errors.New("archdoc: project reference is required")
)

// Repository stores architecture documents keyed by project reference.
// Absence is reported as ok=false, never as an error.
type Repository interface {
	Get(ctx context.Context, projectRef string) (*types.Document, bool, error)
	// Upsert atomically replaces the listed top-level fields, creating the
	// document when it does not exist. Fields not listed keep their stored
	// values.
	Upsert(ctx context.Context, doc *types.Document, fields []string) (*types.Document, error)
	// CompareAndSwap writes doc only when the stored version equals
	// doc.Version. The stored copy gets Version+1.
	CompareAndSwap(ctx context.Context, doc *types.Document) (*types.Document, error)
	Delete(ctx context.Context, projectRef string) (bool, error)
}

// Stores never persist CompletenessScore; callers derive it from the
// returned document.

func normalizeRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidProject
	}
	return ref, nil
}

// upsertInto applies a create payload to the stored document (nil when
// absent) and returns the new stored value.
func upsertInto(stored, doc *types.Document, fields []string, now time.Time) *types.Document {
	if stored == nil {
		out := &types.Document{
			ProjectRef: doc.ProjectRef,
			Status:     types.StatusDraft,
			CreatedBy:  doc.CreatedBy,
			CreatedAt:  now,
		}
		out.CopyFields(doc, fields)
		out.UpdatedBy = doc.UpdatedBy
		out.UpdatedAt = now
		out.Version = 1
		return out
	}
	out := stored.Clone()
	out.CopyFields(doc, fields)
	if doc.UpdatedBy != "" {
		out.UpdatedBy = doc.UpdatedBy
	}
	out.UpdatedAt = now
	out.CompletenessScore = 0
	out.Version = stored.Version + 1
	return out
}

// swapInto checks the version and returns the new stored value.
func swapInto(stored, doc *types.Document, now time.Time) (*types.Document, error) {
	if stored == nil {
		return nil, ErrNotFound
	}
	if stored.Version != doc.Version {
		return nil, ErrVersionConflict
	}
	out := doc.Clone()
	out.ProjectRef = stored.ProjectRef
	out.CreatedAt = stored.CreatedAt
	out.CreatedBy = stored.CreatedBy
	out.CompletenessScore = 0
	out.UpdatedAt = now
	out.Version = stored.Version + 1
	return out, nil
}
