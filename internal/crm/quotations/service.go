package quotations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/surveys"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Service struct {
	logger       *slog.Logger
	repo         Repository
	customerRepo customers.Repository
	surveyRepo   surveys.Repository
}

func NewService(logger *slog.Logger, repo Repository, customerRepo customers.Repository, surveyRepo surveys.Repository) *Service {
	return &Service{
		logger:       logger,
		repo:         repo,
		customerRepo: customerRepo,
		surveyRepo:   surveyRepo,
	}
}

// Create persists a quotation under its caller-supplied number. Line volumes
// default to the linked survey's total volume, or 1 without a survey; a volume
// given explicitly on a line is pinned. All totals are recomputed server-side.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy string) (*Quotation, error) {
	customer, err := s.customerRepo.Get(ctx, req.CustomerRef)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if customer.State == customers.StateDeleted {
		return nil, fmt.Errorf("%w: customer %s is deleted", shared.ErrValidation, customer.CustomerID)
	}

	defaultVolume := 1.0
	if req.SurveyRef != nil {
		survey, err := s.surveyRepo.Get(ctx, *req.SurveyRef)
		if err != nil {
			return nil, fmt.Errorf("verify survey: %w", err)
		}
		defaultVolume = survey.TotalVolume()
	}

	lines := buildLines(req.Packages, defaultVolume)
	lines = SanitizeLineItems(lines)
	Recalculate(lines)
	totalAmount := TotalAmount(lines)

	quotation := Quotation{
		QuotationNo: req.QuotationNo,
		CustomerRef: req.CustomerRef,
		SurveyRef:   req.SurveyRef,
		Packages:    lines,
		TaxAmount:   req.TaxAmount,
		TotalAmount: totalAmount,
		GrandTotal:  GrandTotal(totalAmount, req.TaxAmount),
		Status:      StatusDraft,
		Notes:       req.Notes,
		CreatedBy:   createdBy,
	}

	id, err := s.repo.Create(ctx, quotation)
	if err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update merges a partial edit. Approved and completed quotations are
// read-only; the lock is checked before any write happens. Changing the linked
// survey re-derives the volume of every line that has not been pinned.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Locked() {
		return nil, fmt.Errorf("%w: quotation %s is %s", shared.ErrLocked, existing.QuotationNo, existing.Status)
	}
	if req.ClearSurveyRef && req.SurveyRef != nil {
		return nil, fmt.Errorf("%w: surveyRef and clearSurveyRef are mutually exclusive", shared.ErrValidation)
	}

	surveyRef := existing.SurveyRef
	if req.ClearSurveyRef {
		surveyRef = nil
	} else if req.SurveyRef != nil {
		surveyRef = req.SurveyRef
	}

	lines := existing.Packages
	if req.Packages != nil {
		defaultVolume := 1.0
		if surveyRef != nil {
			survey, err := s.surveyRepo.Get(ctx, *surveyRef)
			if err != nil {
				return nil, fmt.Errorf("verify survey: %w", err)
			}
			defaultVolume = survey.TotalVolume()
		}
		lines = buildLines(*req.Packages, defaultVolume)
	} else if req.SurveyRef != nil && (existing.SurveyRef == nil || *req.SurveyRef != *existing.SurveyRef) {
		survey, err := s.surveyRepo.Get(ctx, *req.SurveyRef)
		if err != nil {
			return nil, fmt.Errorf("verify survey: %w", err)
		}
		ApplySurveyVolume(lines, survey.TotalVolume())
	} else if req.ClearSurveyRef && existing.SurveyRef != nil {
		// Without a survey the unpinned lines fall back to the default volume.
		ApplySurveyVolume(lines, 1)
	}

	lines = SanitizeLineItems(lines)
	Recalculate(lines)

	taxAmount := existing.TaxAmount
	if req.TaxAmount != nil {
		taxAmount = *req.TaxAmount
	}
	totalAmount := TotalAmount(lines)

	updates := map[string]interface{}{
		"packages":     lines,
		"tax_amount":   taxAmount,
		"total_amount": totalAmount,
		"grand_total":  GrandTotal(totalAmount, taxAmount),
	}
	if req.ClearSurveyRef {
		updates["survey_ref"] = nil
	} else if req.SurveyRef != nil {
		updates["survey_ref"] = *req.SurveyRef
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	expected := req.Revision
	if expected == 0 {
		expected = existing.Revision
	}
	if err := s.repo.Update(ctx, id, expected, updates); err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// SetUnitPrice applies the pricing operation to one package option and
// persists the recomputed totals.
func (s *Service) SetUnitPrice(ctx context.Context, id int64, req SetUnitPriceRequest) (*Quotation, error) {
	return s.applyPricing(ctx, id, func(lines []LineItem) error {
		return SetUnitPrice(lines, req.LineIndex, req.PackageName, req.UnitPrice)
	})
}

// SetVolume overrides one line's volume, pinning it against survey recomputes.
func (s *Service) SetVolume(ctx context.Context, id int64, req SetVolumeRequest) (*Quotation, error) {
	return s.applyPricing(ctx, id, func(lines []LineItem) error {
		return SetVolume(lines, req.LineIndex, req.Volume)
	})
}

func (s *Service) applyPricing(ctx context.Context, id int64, op func([]LineItem) error) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Locked() {
		return nil, fmt.Errorf("%w: quotation %s is %s", shared.ErrLocked, existing.QuotationNo, existing.Status)
	}

	lines := existing.Packages
	if err := op(lines); err != nil {
		return nil, err
	}
	totalAmount := TotalAmount(lines)

	err = s.repo.Update(ctx, id, existing.Revision, map[string]interface{}{
		"packages":     lines,
		"total_amount": totalAmount,
		"grand_total":  GrandTotal(totalAmount, existing.TaxAmount),
	})
	if err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Transition moves the quotation along its lifecycle. Approving cascades the
// linked survey to completed, rejecting to cancelled; cascade failures never
// roll back the transition but are logged and surfaced as a warning.
func (s *Service) Transition(ctx context.Context, id int64, target QuotationStatus) (*TransitionResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if err := ValidateTransition(existing.Status, target); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, existing.Status, target); err != nil {
		return nil, fmt.Errorf("update quotation status: %w", err)
	}

	var warning string
	if existing.SurveyRef != nil {
		var surveyStatus surveys.SurveyStatus
		switch target {
		case StatusApproved:
			surveyStatus = surveys.StatusCompleted
		case StatusRejected:
			surveyStatus = surveys.StatusCancelled
		}
		if surveyStatus != "" {
			if err := s.surveyRepo.SetStatus(ctx, *existing.SurveyRef, surveyStatus); err != nil {
				warning = fmt.Sprintf("quotation is %s but linked survey could not be updated", target)
				s.logger.Warn("survey cascade failed",
					slog.Int64("quotation", id),
					slog.Int64("survey", *existing.SurveyRef),
					slog.Any("error", err))
			}
		}
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return &TransitionResult{Quotation: updated, Warning: warning}, nil
}

// Aggregate returns the side-by-side package comparison for the quotation.
func (s *Service) Aggregate(ctx context.Context, id int64) ([]PackageAggregate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return AggregateByPackageName(existing.Packages), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// buildLines converts request lines, merging duplicate package names within a
// line instead of rejecting them. A line with an explicit volume is pinned.
func buildLines(reqs []LineItemRequest, defaultVolume float64) []LineItem {
	lines := make([]LineItem, 0, len(reqs))
	for _, lr := range reqs {
		line := LineItem{
			ID:           lr.ID,
			ServiceGroup: lr.ServiceGroup,
			Service:      lr.Service,
			Volume:       defaultVolume,
		}
		if lr.Volume != nil {
			line.Volume = *lr.Volume
			line.VolumePinned = true
		}

		lines = append(lines, line)
		opts := make([]PackageOption, 0, len(lr.Packages))
		for _, pr := range lr.Packages {
			opts = append(opts, PackageOption{
				ID:          pr.ID,
				PackageName: pr.PackageName,
				UnitPrice:   pr.UnitPrice,
			})
		}
		// MergePackages skips names already present, so duplicates within
		// the request collapse to the first occurrence.
		_ = MergePackages(lines, len(lines)-1, opts)
	}
	return lines
}
