// Package model defines the core domain types shared across the application.
package model

import "time"

// Sentiment is the coarse 3-way label derived from a lead's notes.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known sentiment labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// DefaultStatus is applied to leads whose status field is absent.
const DefaultStatus = "New Lead"

// Lead is a tracked prospective-customer record. ID and CreatedAt are
// assigned by the store on creation and never change afterwards.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	Sentiment Sentiment `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
}

// SentimentDistribution counts leads per sentiment label. All three
// counters are always present in the JSON encoding, zero or not.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// DistributionFromCounts builds a full distribution from a (possibly
// sparse) per-sentiment count map. Unknown labels are ignored.
func DistributionFromCounts(counts map[Sentiment]int) SentimentDistribution {
	var d SentimentDistribution
	for s, n := range counts {
		switch s {
		case SentimentPositive:
			d.Positive = n
		case SentimentNegative:
			d.Negative = n
		case SentimentNeutral:
			d.Neutral = n
		}
	}
	return d
}

// ImportRecord is the audit entry written after a successful batch import.
type ImportRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	RowCount     int       `json:"row_count"`
	StoredCount  int       `json:"stored_count"`
	SkippedCount int       `json:"skipped_count"`
	ImportedAt   time.Time `json:"imported_at"`
}
