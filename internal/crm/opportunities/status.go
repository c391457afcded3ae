package opportunities

import (
	"fmt"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// transitions lists the legal moves of the opportunity lifecycle. won and
// lost are terminal.
var transitions = map[OpportunityStatus][]OpportunityStatus{
	StatusOpen: {StatusWon, StatusLost},
}

// ValidateTransition returns a validation error unless from→to is legal.
func ValidateTransition(from, to OpportunityStatus) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition opportunity from %q to %q", shared.ErrValidation, from, to)
}
