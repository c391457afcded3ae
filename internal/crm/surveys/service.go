package surveys

import (
	"context"
	"fmt"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Service struct {
	repo         Repository
	customerRepo customers.Repository
}

func NewService(repo Repository, customerRepo customers.Repository) *Service {
	return &Service{repo: repo, customerRepo: customerRepo}
}

// Create persists a survey under its externally supplied number. Derived item
// fields are recomputed; duplicates of surveyNo surface as conflicts.
func (s *Service) Create(ctx context.Context, req CreateSurveyRequest, createdBy string) (*Survey, error) {
	customer, err := s.customerRepo.Get(ctx, req.CustomerRef)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if customer.State == customers.StateDeleted {
		return nil, fmt.Errorf("%w: customer %s is deleted", shared.ErrValidation, customer.CustomerID)
	}

	survey := Survey{
		SurveyNo:    req.SurveyNo,
		CustomerRef: req.CustomerRef,
		Items:       RecomputeItems(itemsFromRequests(req.Items)),
		Status:      StatusDraft,
		Notes:       req.Notes,
		CreatedBy:   createdBy,
	}

	id, err := s.repo.Create(ctx, survey)
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update replaces the item list. Area and volume are recomputed from
// length/width/coefficient on every save; terminal surveys are read-only.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSurveyRequest) (*Survey, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: survey %s is %s", shared.ErrLocked, existing.SurveyNo, existing.Status)
	}

	items := existing.Items
	if req.Items != nil {
		items = itemsFromRequests(*req.Items)
	}
	items = RecomputeItems(items)

	expected := req.Revision
	if expected == 0 {
		expected = existing.Revision
	}
	if err := s.repo.Update(ctx, id, expected, items, req.Notes); err != nil {
		return nil, fmt.Errorf("update survey: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Survey, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error) {
	return s.repo.List(ctx, req)
}

func itemsFromRequests(reqs []SurveyItemRequest) []SurveyItem {
	items := make([]SurveyItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, SurveyItem{
			ID:          r.ID,
			Description: r.Description,
			Length:      r.Length,
			Width:       r.Width,
			Coefficient: r.Coefficient,
		})
	}
	return items
}
