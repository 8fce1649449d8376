package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentValid(t *testing.T) {
	assert.True(t, SentimentPositive.Valid())
	assert.True(t, SentimentNegative.Valid())
	assert.True(t, SentimentNeutral.Valid())
	assert.False(t, Sentiment("").Valid())
	assert.False(t, Sentiment("very_positive").Valid())
}

func TestDistributionFromCounts(t *testing.T) {
	d := DistributionFromCounts(map[Sentiment]int{
		SentimentPositive: 3,
		SentimentNegative: 1,
	})
	assert.Equal(t, 3, d.Positive)
	assert.Equal(t, 1, d.Negative)
	assert.Equal(t, 0, d.Neutral)
}

func TestDistributionFromCounts_IgnoresUnknownLabels(t *testing.T) {
	d := DistributionFromCounts(map[Sentiment]int{
		"bogus":          7,
		SentimentNeutral: 2,
	})
	assert.Equal(t, 0, d.Positive)
	assert.Equal(t, 0, d.Negative)
	assert.Equal(t, 2, d.Neutral)
}

func TestDistributionJSON_AlwaysCarriesAllKeys(t *testing.T) {
	out, err := json.Marshal(SentimentDistribution{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"positive":0,"negative":0,"neutral":0}`, string(out))
}
