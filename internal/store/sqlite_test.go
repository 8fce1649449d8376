package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadflow/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	id, err := st.CreateLead(ctx, model.Lead{
		Name:      "Acme Corp",
		Email:     "sales@acme.com",
		Phone:     "555-0101",
		Status:    "Contacted",
		Notes:     "wants a demo",
		Sentiment: model.SentimentPositive,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := st.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "sales@acme.com", got.Email)
	assert.Equal(t, "Contacted", got.Status)
	assert.Equal(t, model.SentimentPositive, got.Sentiment)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLite_GetMissing(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetLead(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_Update(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	id, err := st.CreateLead(ctx, model.Lead{Name: "Acme", Sentiment: model.SentimentNeutral})
	require.NoError(t, err)

	err = st.UpdateLead(ctx, id, model.Lead{
		Name: "Acme Renamed", Status: "Qualified", Notes: "big budget", Sentiment: model.SentimentPositive,
	})
	require.NoError(t, err)

	got, err := st.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", got.Name)
	assert.Equal(t, "Qualified", got.Status)
	assert.Equal(t, model.SentimentPositive, got.Sentiment)
}

func TestSQLite_UpdateMissing(t *testing.T) {
	st := newTestSQLite(t)
	err := st.UpdateLead(context.Background(), 404, model.Lead{Name: "ghost"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_Delete(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	id, err := st.CreateLead(ctx, model.Lead{Name: "Acme", Sentiment: model.SentimentNeutral})
	require.NoError(t, err)

	require.NoError(t, st.DeleteLead(ctx, id))
	_, err = st.GetLead(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(st.DeleteLead(ctx, id), ErrNotFound))
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"oldest", "middle", "newest"} {
		_, err := st.CreateLead(ctx, model.Lead{
			Name:      name,
			Sentiment: model.SentimentNeutral,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	leads, err := st.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "newest", leads[0].Name)
	assert.Equal(t, "middle", leads[1].Name)
	assert.Equal(t, "oldest", leads[2].Name)
}

func TestSQLite_CountBySentiment(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	inside := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	lastHour := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC)

	seed := []model.Lead{
		{Name: "a", Sentiment: model.SentimentPositive, CreatedAt: inside},
		{Name: "b", Sentiment: model.SentimentPositive, CreatedAt: lastHour},
		{Name: "c", Sentiment: model.SentimentNegative, CreatedAt: inside},
		{Name: "d", Sentiment: model.SentimentNeutral, CreatedAt: outside},
	}
	require.NoError(t, st.CreateLeadBatch(ctx, seed))

	// No range counts everything.
	counts, err := st.CountBySentiment(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.SentimentPositive])
	assert.Equal(t, 1, counts[model.SentimentNegative])
	assert.Equal(t, 1, counts[model.SentimentNeutral])

	// A January window that runs to the last second of the 31st picks up
	// the 23:00 lead but not February.
	jan := &TimeRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	counts, err = st.CountBySentiment(ctx, jan)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.SentimentPositive])
	assert.Equal(t, 1, counts[model.SentimentNegative])
	assert.Equal(t, 0, counts[model.SentimentNeutral])

	// Truncating the window before 23:00 drops the late lead.
	early := &TimeRange{Start: jan.Start, End: time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)}
	counts, err = st.CountBySentiment(ctx, early)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.SentimentPositive])
}

func TestSQLite_BatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	// The empty name violates the table check, so the whole batch must
	// roll back.
	batch := []model.Lead{
		{Name: "valid one", Sentiment: model.SentimentPositive},
		{Name: "", Sentiment: model.SentimentNeutral},
		{Name: "valid two", Sentiment: model.SentimentNegative},
	}
	err := st.CreateLeadBatch(ctx, batch)
	require.Error(t, err)

	leads, err := st.ListLeads(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestSQLite_BatchEmptyIsNoop(t *testing.T) {
	st := newTestSQLite(t)
	assert.NoError(t, st.CreateLeadBatch(context.Background(), nil))
}

func TestSQLite_Imports(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"imp-1", "imp-2", "imp-3"} {
		require.NoError(t, st.RecordImport(ctx, model.ImportRecord{
			ID:           id,
			Filename:     "leads.csv",
			RowCount:     10,
			StoredCount:  9,
			SkippedCount: 1,
			ImportedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := st.ListImports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "imp-3", recs[0].ID)
	assert.Equal(t, "imp-2", recs[1].ID)
	assert.Equal(t, 10, recs[0].RowCount)
	assert.Equal(t, 9, recs[0].StoredCount)
	assert.Equal(t, 1, recs[0].SkippedCount)
}
