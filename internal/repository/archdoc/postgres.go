package archdoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"archrecon/internal/types"
)

const table = "project_architectures"

// PostgresStore keeps each document as a JSONB row with a version column.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS project_architectures (
  project_id TEXT PRIMARY KEY,
  doc JSONB NOT NULL DEFAULT '{}'::jsonb,
  version BIGINT NOT NULL DEFAULT 1,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func builder() *entsql.DialectBuilder { return entsql.Dialect(dialect.Postgres) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*types.Document, error) {
	var (
		raw     []byte
		version int64
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&raw, &version, &created, &updated); err != nil {
		return nil, err
	}
	var doc types.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("archdoc: decode row: %w", err)
	}
	doc.Version = version
	doc.CreatedAt = created.UTC()
	doc.UpdatedAt = updated.UTC()
	return &doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, projectRef string) (*types.Document, bool, error) {
	ref, err := normalizeRef(projectRef)
	if err != nil {
		return nil, false, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, false, err
	}
	query, args := builder().
		Select("doc", "version", "created_at", "updated_at").
		From(entsql.Table(table)).
		Where(entsql.EQ("project_id", ref)).
		Query()
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	doc.ProjectRef = ref
	return doc, true, nil
}

// Upsert merges the listed fields into the stored JSONB with one statement, so
// two concurrent creates never interleave a read and a write.
func (s *PostgresStore) Upsert(ctx context.Context, doc *types.Document, fields []string) (*types.Document, error) {
	ref, err := normalizeRef(doc.ProjectRef)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	next := *doc
	next.ProjectRef = ref
	insert, update, err := fieldPayloads(&next, fields)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO project_architectures (project_id, doc, version, created_at, updated_at)
VALUES ($1, $2::jsonb, 1, NOW(), NOW())
ON CONFLICT (project_id)
DO UPDATE SET doc = (project_architectures.doc - 'completenessScore') || $3::jsonb,
  version = project_architectures.version + 1,
  updated_at = NOW()
RETURNING doc, version, created_at, updated_at`, ref, string(insert), string(update))
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	out.ProjectRef = ref
	return out, nil
}

// fieldPayloads renders the JSON objects for the insert and the conflict
// branch. Both carry only the replaced fields plus bookkeeping; creation
// fields appear on insert only. The completeness score is derived on read and
// never stored.
func fieldPayloads(doc *types.Document, fields []string) ([]byte, []byte, error) {
	full, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(full, &all); err != nil {
		return nil, nil, err
	}
	update := map[string]json.RawMessage{"projectRef": all["projectRef"]}
	if v, ok := all["updatedBy"]; ok {
		update["updatedBy"] = v
	}
	for _, f := range fields {
		if v, ok := all[f]; ok {
			update[f] = v
		}
	}
	insert := make(map[string]json.RawMessage, len(update)+2)
	insert["status"] = json.RawMessage(`"` + types.StatusDraft + `"`)
	if v, ok := all["createdBy"]; ok {
		insert["createdBy"] = v
	}
	for k, v := range update {
		insert[k] = v
	}
	ins, err := json.Marshal(insert)
	if err != nil {
		return nil, nil, err
	}
	upd, err := json.Marshal(update)
	if err != nil {
		return nil, nil, err
	}
	return ins, upd, nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, doc *types.Document) (*types.Document, error) {
	ref, err := normalizeRef(doc.ProjectRef)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	next := doc.Clone()
	next.ProjectRef = ref
	next.CompletenessScore = 0
	payload, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	query, args := builder().
		Update(table).
		Set("doc", string(payload)).
		Set("version", doc.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("project_id", ref),
			entsql.EQ("version", doc.Version),
		)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, ok, gerr := s.Get(ctx, ref); gerr == nil && !ok {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}
	out, ok, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, projectRef string) (bool, error) {
	ref, err := normalizeRef(projectRef)
	if err != nil {
		return false, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return false, err
	}
	query, args := builder().
		Delete(table).
		Where(entsql.EQ("project_id", ref)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
