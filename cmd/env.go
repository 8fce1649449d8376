package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow/internal/ingest"
	"github.com/sells-group/leadflow/internal/leads"
	"github.com/sells-group/leadflow/internal/sentiment"
	"github.com/sells-group/leadflow/internal/stats"
	"github.com/sells-group/leadflow/internal/store"
	anthropicpkg "github.com/sells-group/leadflow/pkg/anthropic"
)

// appEnv bundles the wired application components.
type appEnv struct {
	Store      store.Store
	Classifier sentiment.Classifier
	Pipeline   *ingest.Pipeline
	Leads      *leads.Service
	Stats      *stats.Aggregator
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadflow.db"
		}
		return store.NewSQLite(dsn)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv wires the store, classifier, pipeline, lead service, and
// aggregator. The classifier degrades to neutral-only when no API key
// is configured; ingestion must not depend on model availability.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Debug("LEADFLOW_ANTHROPIC_KEY not set, sentiment classification disabled")
	}
	classifier := sentiment.NewModelClassifier(aiClient, cfg.Anthropic.Model, cfg.Sentiment)

	return &appEnv{
		Store:      st,
		Classifier: classifier,
		Pipeline:   ingest.NewPipeline(st, classifier, cfg.Sentiment.Concurrency),
		Leads:      leads.NewService(st, classifier),
		Stats:      stats.NewAggregator(st),
	}, nil
}
