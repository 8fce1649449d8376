// Package leads implements single-lead create, edit, delete and listing
// on top of the store and the sentiment classifier.
package leads

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow/internal/model"
	"github.com/sells-group/leadflow/internal/sentiment"
	"github.com/sells-group/leadflow/internal/store"
)

// Input carries the submitted fields for an add or edit. Every edit
// replaces every field; there are no partial updates.
type Input struct {
	Name   string
	Email  string
	Phone  string
	Status string
	Notes  string
}

// Service wires single-lead operations to the store and classifier.
type Service struct {
	store      store.Store
	classifier sentiment.Classifier
}

func NewService(st store.Store, classifier sentiment.Classifier) *Service {
	return &Service{store: st, classifier: classifier}
}

// Add creates a lead from form input, applying the same defaults as
// batch normalization (a blank status becomes model.DefaultStatus).
// Required-field validation of name is the caller's responsibility.
// Notes are always classified.
func (s *Service) Add(ctx context.Context, in Input) (*model.Lead, error) {
	lead := model.Lead{
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Status: in.Status,
		Notes:  in.Notes,
	}
	if lead.Status == "" {
		lead.Status = model.DefaultStatus
	}
	lead.Sentiment = s.classifier.Classify(ctx, lead.Notes)

	id, err := s.store.CreateLead(ctx, lead)
	if err != nil {
		return nil, eris.Wrap(err, "leads: add")
	}
	lead.ID = id
	return &lead, nil
}

// Edit replaces every field of an existing lead with the submitted
// values. Sentiment is recomputed only when the notes text changed;
// otherwise the stored sentiment is kept as-is.
func (s *Service) Edit(ctx context.Context, id int64, in Input) (*model.Lead, error) {
	existing, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := model.Lead{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Status:    in.Status,
		Notes:     in.Notes,
		Sentiment: existing.Sentiment,
		CreatedAt: existing.CreatedAt,
	}
	if in.Notes != existing.Notes {
		updated.Sentiment = s.classifier.Classify(ctx, in.Notes)
	}

	if err := s.store.UpdateLead(ctx, id, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a lead by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteLead(ctx, id)
}

// Get fetches one lead by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Lead, error) {
	return s.store.GetLead(ctx, id)
}

// List returns all leads, most recently created first.
func (s *Service) List(ctx context.Context) ([]model.Lead, error) {
	return s.store.ListLeads(ctx)
}
