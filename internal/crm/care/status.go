package care

import (
	"fmt"
	"strings"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// CloseRequest carries the fields a terminal transition requires. Done needs
// a care result; cancelled needs both a reject group and a reject reason.
type CloseRequest struct {
	Status       CareStatus `json:"status" validate:"required"`
	CareResult   *string    `json:"careResult,omitempty"`
	RejectGroup  *string    `json:"rejectGroup,omitempty"`
	RejectReason *string    `json:"rejectReason,omitempty"`
}

// ValidateClose checks the transition and its required fields. Only
// pending→done and pending→cancelled exist; both targets are terminal.
func ValidateClose(from CareStatus, req CloseRequest) error {
	if from != StatusPending {
		return fmt.Errorf("%w: cannot transition care record from %q to %q", shared.ErrValidation, from, req.Status)
	}
	switch req.Status {
	case StatusDone:
		if req.CareResult == nil || strings.TrimSpace(*req.CareResult) == "" {
			return fmt.Errorf("%w: completing a care record requires a care result", shared.ErrValidation)
		}
	case StatusCancelled:
		if req.RejectGroup == nil || strings.TrimSpace(*req.RejectGroup) == "" ||
			req.RejectReason == nil || strings.TrimSpace(*req.RejectReason) == "" {
			return fmt.Errorf("%w: cancelling a care record requires a reject group and reason", shared.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: cannot transition care record from %q to %q", shared.ErrValidation, from, req.Status)
	}
	return nil
}
