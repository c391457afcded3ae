package quotations

import (
	"fmt"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// transitions is the full adjacency list of the quotation lifecycle.
// rejected and completed are terminal.
var transitions = map[QuotationStatus][]QuotationStatus{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// ValidateTransition returns a validation error unless from→to appears in the
// adjacency list. Unknown target statuses are rejected, never silently applied.
func ValidateTransition(from, to QuotationStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition quotation from %q to %q", shared.ErrValidation, from, to)
}
