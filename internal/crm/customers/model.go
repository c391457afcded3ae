package customers

import "time"

// State is the explicit lifecycle state of a customer. Soft-deleted customers
// stay in storage but are excluded from read paths unless asked for.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

type Customer struct {
	ID             int64     `json:"id"`
	CustomerID     string    `json:"customerId"`
	Name           string    `json:"name"`
	ShortName      string    `json:"shortName"`
	PotentialLevel int       `json:"potentialLevel"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	State          State     `json:"state"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Revision       int64     `json:"revision"`
}
