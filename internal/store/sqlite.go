package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadflow/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL CHECK (name <> ''),
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'New Lead',
	notes      TEXT NOT NULL DEFAULT '',
	sentiment  TEXT NOT NULL DEFAULT 'neutral',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_sentiment ON leads(sentiment);

CREATE TABLE IF NOT EXISTS imports (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	stored_count  INTEGER NOT NULL,
	skipped_count INTEGER NOT NULL,
	imported_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_imports_imported_at ON imports(imported_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) (int64, error) {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (name, email, phone, status, notes, sentiment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lead.Name, lead.Email, lead.Phone, lead.Status, lead.Notes, string(lead.Sentiment), lead.CreatedAt,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert lead")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: last insert id")
	}
	return id, nil
}

func (s *SQLiteStore) CreateLeadBatch(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (name, email, phone, status, notes, sentiment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare batch insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range leads {
		createdAt := l.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, l.Name, l.Email, l.Phone, l.Status, l.Notes, string(l.Sentiment), createdAt); err != nil {
			return eris.Wrap(err, "sqlite: batch insert lead")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit lead batch")
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, id int64, lead model.Lead) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, email = ?, phone = ?, status = ?, notes = ?, sentiment = ?
		 WHERE id = ?`,
		lead.Name, lead.Email, lead.Phone, lead.Status, lead.Notes, string(lead.Sentiment), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %d", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %d", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	var l model.Lead
	var sentiment string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, status, notes, sentiment, created_at FROM leads WHERE id = ?`,
		id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Notes, &sentiment, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: get lead %d", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get lead %d", id)
	}
	l.Sentiment = model.Sentiment(sentiment)
	return &l, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, status, notes, sentiment, created_at
		 FROM leads ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var sentiment string
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.Notes, &sentiment, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l.Sentiment = model.Sentiment(sentiment)
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) CountBySentiment(ctx context.Context, r *TimeRange) (map[model.Sentiment]int, error) {
	query := `SELECT sentiment, COUNT(*) FROM leads`
	var args []any
	if r != nil {
		query += ` WHERE created_at BETWEEN ? AND ?`
		args = append(args, r.Start, r.End)
	}
	query += ` GROUP BY sentiment`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by sentiment")
	}
	defer rows.Close()

	counts := make(map[model.Sentiment]int)
	for rows.Next() {
		var sentiment string
		var n int
		if err := rows.Scan(&sentiment, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sentiment count")
		}
		counts[model.Sentiment(sentiment)] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count by sentiment iterate")
}

func (s *SQLiteStore) RecordImport(ctx context.Context, rec model.ImportRecord) error {
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, filename, row_count, stored_count, skipped_count, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.RowCount, rec.StoredCount, rec.SkippedCount, rec.ImportedAt,
	)
	return eris.Wrap(err, "sqlite: record import")
}

func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, row_count, stored_count, skipped_count, imported_at
		 FROM imports ORDER BY imported_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list imports")
	}
	defer rows.Close()

	var recs []model.ImportRecord
	for rows.Next() {
		var rec model.ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.RowCount, &rec.StoredCount, &rec.SkippedCount, &rec.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import record")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list imports iterate")
}

// helpers

func checkRowsAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: lead %d", id)
	}
	return nil
}
