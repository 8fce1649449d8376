// Package ingest turns tabular lead uploads into classified, persisted
// lead records.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadflow/internal/model"
	"github.com/sells-group/leadflow/internal/sentiment"
	"github.com/sells-group/leadflow/internal/store"
)

// Outcome reports the result of one import. ImportedCount is the
// number of rows decoded from the source, including skipped rows.
type Outcome struct {
	ImportID      string
	ImportedCount int
	StoredCount   int
	SkippedCount  int
}

// Pipeline drives a tabular source through normalization and sentiment
// classification into one atomic batch write.
type Pipeline struct {
	store       store.Store
	classifier  sentiment.Classifier
	concurrency int
}

// NewPipeline constructs an ingestion pipeline. concurrency bounds the
// number of in-flight classification calls per import.
func NewPipeline(st store.Store, classifier sentiment.Classifier, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Pipeline{store: st, classifier: classifier, concurrency: concurrency}
}

// ImportFile imports a lead table from a file on disk.
func (p *Pipeline) ImportFile(ctx context.Context, path string) (*Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	return p.Import(ctx, f, filepath.Base(path))
}

// Import decodes the source, normalizes each row in order, classifies
// the pending rows, and commits them as a single batch. Rows without a
// name are skipped. Any persistence error rolls the whole batch back;
// no partial import is ever visible.
func (p *Pipeline) Import(ctx context.Context, r io.Reader, filename string) (*Outcome, error) {
	rows, err := DecodeSource(r, filename)
	if err != nil {
		return nil, err
	}

	pending := make([]model.Lead, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		lead, ok := Normalize(row)
		if !ok {
			skipped++
			continue
		}
		pending = append(pending, lead)
	}

	// Classify concurrently but index the results so the original row
	// order survives into the batch.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range pending {
		g.Go(func() error {
			pending[i].Sentiment = p.classifier.Classify(gCtx, pending[i].Notes)
			return nil
		})
	}
	_ = g.Wait()

	importID := uuid.New().String()

	if err := p.store.CreateLeadBatch(ctx, pending); err != nil {
		zap.L().Error("ingest: batch write failed, rolled back",
			zap.String("import_id", importID),
			zap.String("filename", filename),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "ingest: import %s", filename)
	}

	outcome := &Outcome{
		ImportID:      importID,
		ImportedCount: len(rows),
		StoredCount:   len(pending),
		SkippedCount:  skipped,
	}

	// Audit trail only; a failure here must not fail a committed import.
	if err := p.store.RecordImport(ctx, model.ImportRecord{
		ID:           importID,
		Filename:     filename,
		RowCount:     outcome.ImportedCount,
		StoredCount:  outcome.StoredCount,
		SkippedCount: outcome.SkippedCount,
	}); err != nil {
		zap.L().Warn("ingest: record import failed", zap.String("import_id", importID), zap.Error(err))
	}

	zap.L().Info("ingest: import complete",
		zap.String("import_id", importID),
		zap.String("filename", filename),
		zap.Int("imported", outcome.ImportedCount),
		zap.Int("stored", outcome.StoredCount),
		zap.Int("skipped", outcome.SkippedCount),
	)
	return outcome, nil
}
