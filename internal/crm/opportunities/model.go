package opportunities

import "time"

type OpportunityStatus string

const (
	StatusOpen OpportunityStatus = "open"
	StatusWon  OpportunityStatus = "won"
	StatusLost OpportunityStatus = "lost"
)

// Opportunity is a sales lead attached to a customer. OpportunityValue is a
// derived column, recomputed from unitPrice and probability on every save;
// values arriving from the client are ignored.
type Opportunity struct {
	ID               int64             `json:"id"`
	OpportunityNo    string            `json:"opportunityNo"`
	CustomerRef      int64             `json:"customerRef"`
	Demands          []string          `json:"demands"`
	UnitPrice        float64           `json:"unitPrice"`
	Probability      int               `json:"probability"`
	OpportunityValue float64           `json:"opportunityValue"`
	CareHistory      []string          `json:"careHistory"`
	Status           OpportunityStatus `json:"status"`
	Notes            *string           `json:"notes,omitempty"`
	CreatedBy        string            `json:"createdBy"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Revision         int64             `json:"revision"`
}

// Value computes the expected value: unitPrice weighted by the win
// probability percentage.
func Value(unitPrice float64, probability int) float64 {
	return unitPrice * float64(probability) / 100
}

// Closed reports whether the opportunity has reached a terminal status.
func (o *Opportunity) Closed() bool {
	return o.Status == StatusWon || o.Status == StatusLost
}
