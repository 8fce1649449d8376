// Package store provides lead persistence over Postgres or SQLite.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow/internal/model"
)

// ErrNotFound is returned when an operation targets a lead id that does
// not exist. Match with errors.Is.
var ErrNotFound = eris.New("lead not found")

// TimeRange restricts a query to leads created within [Start, End].
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Store defines the persistence interface consumed by the ingestion
// pipeline, the lead service, and the stats aggregator.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (int64, error)
	// CreateLeadBatch writes all leads in a single transaction. On any
	// error the whole batch is rolled back and nothing is visible.
	CreateLeadBatch(ctx context.Context, leads []model.Lead) error
	UpdateLead(ctx context.Context, id int64, lead model.Lead) error
	DeleteLead(ctx context.Context, id int64) error
	GetLead(ctx context.Context, id int64) (*model.Lead, error)
	ListLeads(ctx context.Context) ([]model.Lead, error)
	CountBySentiment(ctx context.Context, r *TimeRange) (map[model.Sentiment]int, error)

	// Import audit trail
	RecordImport(ctx context.Context, rec model.ImportRecord) error
	ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
