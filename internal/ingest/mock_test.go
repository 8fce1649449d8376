package ingest

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadflow/internal/model"
	"github.com/sells-group/leadflow/internal/store"
)

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateLead(ctx context.Context, lead model.Lead) (int64, error) {
	args := m.Called(ctx, lead)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CreateLeadBatch(ctx context.Context, leads []model.Lead) error {
	args := m.Called(ctx, leads)
	return args.Error(0)
}

func (m *mockStore) UpdateLead(ctx context.Context, id int64, lead model.Lead) error {
	args := m.Called(ctx, id, lead)
	return args.Error(0)
}

func (m *mockStore) DeleteLead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) CountBySentiment(ctx context.Context, r *store.TimeRange) (map[model.Sentiment]int, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Sentiment]int), args.Error(1)
}

func (m *mockStore) RecordImport(ctx context.Context, rec model.ImportRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockStore) ListImports(ctx context.Context, limit int) ([]model.ImportRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ImportRecord), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Classifier stub ---

// stubClassifier labels text from a fixed table, defaulting to neutral.
// The call counter is atomic because the pipeline classifies concurrently.
type stubClassifier struct {
	labels map[string]model.Sentiment
	calls  atomic.Int64
}

func (s *stubClassifier) Classify(ctx context.Context, text string) model.Sentiment {
	s.calls.Add(1)
	if label, ok := s.labels[text]; ok {
		return label
	}
	return model.SentimentNeutral
}
