package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock
// satisfies it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name       TEXT NOT NULL CHECK (name <> ''),
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'New Lead',
	notes      TEXT NOT NULL DEFAULT '',
	sentiment  TEXT NOT NULL DEFAULT 'neutral',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_sentiment ON leads(sentiment);

CREATE TABLE IF NOT EXISTS imports (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	stored_count  INTEGER NOT NULL,
	skipped_count INTEGER NOT NULL,
	imported_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_imports_imported_at ON imports(imported_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (int64, error) {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO leads (name, email, phone, status, notes, sentiment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		lead.Name, lead.Email, lead.Phone, lead.Status, lead.Notes, string(lead.Sentiment), lead.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert lead")
	}
	return id, nil
}

var leadCopyColumns = []string{"name", "email", "phone", "status", "notes", "sentiment", "created_at"}

func (s *PostgresStore) CreateLeadBatch(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(leads))
	for i, l := range leads {
		createdAt := l.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		rows[i] = []any{l.Name, l.Email, l.Phone, l.Status, l.Notes, string(l.Sentiment), createdAt}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin batch")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"leads"}, leadCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return eris.Wrap(err, "postgres: copy lead batch")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit lead batch")
}

func (s *PostgresStore) UpdateLead(ctx context.Context, id int64, lead model.Lead) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET name = $1, email = $2, phone = $3, status = $4, notes = $5, sentiment = $6
		 WHERE id = $7`,
		lead.Name, lead.Email, lead.Phone, lead.Status, lead.Notes, string(lead.Sentiment), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: update lead %d", id)
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete lead %d", id)
	}
	return nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	var l model.Lead
	var sentiment string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, status, notes, sentiment, created_at FROM leads WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Notes, &sentiment, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get lead %d", id)
		}
		return nil, eris.Wrapf(err, "postgres: get lead %d", id)
	}
	l.Sentiment = model.Sentiment(sentiment)
	return &l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, phone, status, notes, sentiment, created_at
		 FROM leads ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var sentiment string
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Notes, &sentiment, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l.Sentiment = model.Sentiment(sentiment)
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) CountBySentiment(ctx context.Context, r *TimeRange) (map[model.Sentiment]int, error) {
	query := `SELECT sentiment, COUNT(*) FROM leads`
	var args []any
	if r != nil {
		query += ` WHERE created_at BETWEEN $1 AND $2`
		args = append(args, r.Start, r.End)
	}
	query += ` GROUP BY sentiment`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by sentiment")
	}
	defer rows.Close()

	counts := make(map[model.Sentiment]int)
	for rows.Next() {
		var sentiment string
		var n int
		if err := rows.Scan(&sentiment, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sentiment count")
		}
		counts[model.Sentiment(sentiment)] = n
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count by sentiment iterate")
}

func (s *PostgresStore) RecordImport(ctx context.Context, rec model.ImportRecord) error {
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO imports (id, filename, row_count, stored_count, skipped_count, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Filename, rec.RowCount, rec.StoredCount, rec.SkippedCount, rec.ImportedAt,
	)
	return eris.Wrap(err, "postgres: record import")
}

func (s *PostgresStore) ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, row_count, stored_count, skipped_count, imported_at
		 FROM imports ORDER BY imported_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list imports")
	}
	defer rows.Close()

	var recs []model.ImportRecord
	for rows.Next() {
		var rec model.ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.RowCount, &rec.StoredCount, &rec.SkippedCount, &rec.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import record")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list imports iterate")
}
