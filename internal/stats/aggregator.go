// Package stats computes sentiment distributions over an optional
// creation-date window.
package stats

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow/internal/model"
	"github.com/sells-group/leadflow/internal/store"
)

// ErrInvalidDateFormat is returned when a range bound is not a
// YYYY-MM-DD calendar date. Match with errors.Is.
var ErrInvalidDateFormat = eris.New("invalid date format")

const dateLayout = "2006-01-02"

// Aggregator counts leads per sentiment via the store.
type Aggregator struct {
	store store.Store
}

func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Aggregate returns the sentiment distribution for leads created in
// [start 00:00:00, end 23:59:59]. The window applies only when both
// bounds are given; with one or zero bounds every lead is counted.
// The result always carries all three sentiment keys.
func (a *Aggregator) Aggregate(ctx context.Context, start, end string) (model.SentimentDistribution, error) {
	var tr *store.TimeRange
	if start != "" && end != "" {
		startAt, err := time.Parse(dateLayout, start)
		if err != nil {
			return model.SentimentDistribution{}, eris.Wrapf(ErrInvalidDateFormat, "stats: start %q", start)
		}
		endDay, err := time.Parse(dateLayout, end)
		if err != nil {
			return model.SentimentDistribution{}, eris.Wrapf(ErrInvalidDateFormat, "stats: end %q", end)
		}
		// Widen the end bound to the last second of that calendar day so
		// the range is inclusive of the entire end date.
		tr = &store.TimeRange{
			Start: startAt,
			End:   endDay.Add(23*time.Hour + 59*time.Minute + 59*time.Second),
		}
	}

	counts, err := a.store.CountBySentiment(ctx, tr)
	if err != nil {
		return model.SentimentDistribution{}, eris.Wrap(err, "stats: aggregate")
	}
	return model.DistributionFromCounts(counts), nil
}
