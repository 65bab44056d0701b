package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/poqie/linkguard/internal/database"
)

// Postgres реализует Document поверх PostgreSQL: одна таблица documents с
// путём в качестве первичного ключа и jsonb-документом.
type Postgres struct {
	DB database.DBInterface
}

// NewPostgres создаёт новый экземпляр Postgres.
func NewPostgres(db database.DBInterface) *Postgres {
	return &Postgres{DB: db}
}

func (s *Postgres) pool() database.Pool {
	return s.DB.Pool()
}

func (s *Postgres) Read(ctx context.Context, path string) (json.RawMessage, bool, error) {
	var raw json.RawMessage
	err := s.pool().QueryRow(ctx, `SELECT doc FROM documents WHERE path = $1`, path).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("database error: %w", err)
	}
	return raw, true, nil
}

func (s *Postgres) Write(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", path, err)
	}

	query := `INSERT INTO documents (path, doc) VALUES ($1, $2)
              ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc`
	if _, err := s.pool().Exec(ctx, query, path, raw); err != nil {
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, path string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal partial fields for %q: %w", path, err)
	}

	// Слияние на стороне БД: конкурентные Update разных полей не теряются.
	query := `INSERT INTO documents (path, doc) VALUES ($1, $2)
              ON CONFLICT (path) DO UPDATE SET doc = documents.doc || EXCLUDED.doc`
	if _, err := s.pool().Exec(ctx, query, path, raw); err != nil {
		return fmt.Errorf("database update error: %w", err)
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	query := `DELETE FROM documents WHERE path = $1 OR path LIKE $1 || '/%'`
	if _, err := s.pool().Exec(ctx, query, path); err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	return nil
}

func (s *Postgres) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := s.pool().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE path = $1)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return exists, nil
}

// CreateIfAbsent — условная запись: уникальность обеспечивается самим INSERT,
// а не предварительной проверкой.
func (s *Postgres) CreateIfAbsent(ctx context.Context, path string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal document %q: %w", path, err)
	}

	query := `INSERT INTO documents (path, doc) VALUES ($1, $2) ON CONFLICT (path) DO NOTHING`
	tag, err := s.pool().Exec(ctx, query, path, raw)
	if err != nil {
		return false, fmt.Errorf("database insert error: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementField выполняет инкремент одним UPDATE, без round-trip
// read-then-write: конкурентные инкременты не теряются.
func (s *Postgres) IncrementField(ctx context.Context, path, field string, delta int64) (int64, error) {
	query := `UPDATE documents
              SET doc = jsonb_set(doc, ARRAY[$2], to_jsonb(COALESCE((doc->>$2)::bigint, 0) + $3))
              WHERE path = $1
              RETURNING (doc->>$2)::bigint`

	var next int64
	err := s.pool().QueryRow(ctx, query, path, field, delta).Scan(&next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("document %q does not exist", path)
		}
		return 0, fmt.Errorf("database update error: %w", err)
	}
	return next, nil
}

func (s *Postgres) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	p := strings.TrimSuffix(prefix, "/")
	query := `SELECT path, doc FROM documents
              WHERE path LIKE $1 || '/%' AND path NOT LIKE $1 || '/%/%'`

	rows, err := s.pool().Query(ctx, query, p)
	if err != nil {
		return nil, fmt.Errorf("database query error: %w", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var raw json.RawMessage
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[path[strings.LastIndex(path, "/")+1:]] = raw
	}
	return result, rows.Err()
}
