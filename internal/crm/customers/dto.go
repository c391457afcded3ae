package customers

type CreateCustomerRequest struct {
	Name           string  `json:"name" validate:"required,max=255"`
	ShortName      string  `json:"shortName" validate:"omitempty,max=32"`
	PotentialLevel int     `json:"potentialLevel" validate:"gte=0,lte=5"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Address        *string `json:"address,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=255"`
	PotentialLevel *int    `json:"potentialLevel,omitempty" validate:"omitempty,gte=0,lte=5"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Address        *string `json:"address,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Revision       int64   `json:"revision" validate:"gte=0"`
}

type ListCustomersRequest struct {
	State   State  `json:"state,omitempty"`
	Search  string `json:"search,omitempty"`
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"perPage" validate:"gte=0,lte=200"`
}
