package care

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/opportunities"
	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/platform/blob"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Service struct {
	logger          *slog.Logger
	repo            Repository
	customerRepo    customers.Repository
	opportunityRepo opportunities.Repository
	blobs           blob.Store
	gen             *sequence.Generator
	now             func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, customerRepo customers.Repository,
	opportunityRepo opportunities.Repository, blobs blob.Store, gen *sequence.Generator) *Service {
	return &Service{
		logger:          logger,
		repo:            repo,
		customerRepo:    customerRepo,
		opportunityRepo: opportunityRepo,
		blobs:           blobs,
		gen:             gen,
		now:             time.Now,
	}
}

// Create opens a pending care record. The care id is sequenced within the
// creation month. When an opportunity is linked, the care id is appended to
// its history; that append is best-effort and never fails the create.
func (s *Service) Create(ctx context.Context, req CreateCareRequest, createdBy string) (*CreateResult, error) {
	customer, err := s.customerRepo.Get(ctx, req.CustomerRef)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if customer.State == customers.StateDeleted {
		return nil, fmt.Errorf("%w: customer %s is deleted", shared.ErrValidation, customer.CustomerID)
	}
	if req.OpportunityRef != nil {
		if _, err := s.opportunityRepo.Get(ctx, *req.OpportunityRef); err != nil {
			return nil, fmt.Errorf("verify opportunity: %w", err)
		}
	}

	careID, err := s.gen.CareID(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate care id: %w", err)
	}

	record := CustomerCare{
		CareID:         careID,
		CustomerRef:    req.CustomerRef,
		CareType:       req.CareType,
		Content:        req.Content,
		OpportunityRef: req.OpportunityRef,
		SurveyRef:      req.SurveyRef,
		QuotationRef:   req.QuotationRef,
		Status:         StatusPending,
		Attachments:    []blob.Object{},
		CreatedBy:      createdBy,
	}

	id, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create care record: %w", err)
	}

	var warning string
	if req.OpportunityRef != nil {
		if err := s.opportunityRepo.AppendCareHistory(ctx, *req.OpportunityRef, careID); err != nil {
			warning = "care record created but the opportunity history could not be updated"
			s.logger.Warn("care history append failed",
				slog.String("careId", careID),
				slog.Int64("opportunity", *req.OpportunityRef),
				slog.Any("error", err))
		}
	}

	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get care record: %w", err)
	}
	return &CreateResult{Care: created, Warning: warning}, nil
}

// Update merges a partial edit. Terminal records are read-only.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCareRequest) (*CustomerCare, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get care record: %w", err)
	}
	if existing.Terminal() {
		return nil, fmt.Errorf("%w: care record %s is %s", shared.ErrLocked, existing.CareID, existing.Status)
	}

	updates := make(map[string]interface{})
	if req.CareType != nil {
		updates["care_type"] = *req.CareType
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if len(updates) == 0 {
		return existing, nil
	}

	expected := req.Revision
	if expected == 0 {
		expected = existing.Revision
	}
	if err := s.repo.Update(ctx, id, expected, updates); err != nil {
		return nil, fmt.Errorf("update care record: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Close moves the record to done or cancelled. Both targets are terminal and
// each requires its result fields.
func (s *Service) Close(ctx context.Context, id int64, req CloseRequest) (*CustomerCare, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get care record: %w", err)
	}
	if err := ValidateClose(existing.Status, req); err != nil {
		return nil, err
	}
	if err := s.repo.Close(ctx, id, req); err != nil {
		return nil, fmt.Errorf("close care record: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Attach uploads one file to the blob store and records the returned object
// on the care record. Raw bytes are never persisted here.
func (s *Service) Attach(ctx context.Context, id int64, content io.Reader, filename string) (*CustomerCare, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get care record: %w", err)
	}
	if existing.Terminal() {
		return nil, fmt.Errorf("%w: care record %s is %s", shared.ErrLocked, existing.CareID, existing.Status)
	}

	obj, err := s.blobs.Upload(ctx, content, filename, "customer-care")
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}
	if err := s.repo.AppendAttachment(ctx, id, obj); err != nil {
		return nil, fmt.Errorf("record attachment: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*CustomerCare, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCareRequest) ([]CustomerCare, int, error) {
	return s.repo.List(ctx, req)
}
