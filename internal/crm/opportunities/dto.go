package opportunities

type CreateOpportunityRequest struct {
	CustomerRef int64    `json:"customerRef" validate:"required,gt=0"`
	Demands     []string `json:"demands" validate:"required,min=1,dive,required,max=256"`
	UnitPrice   float64  `json:"unitPrice" validate:"gte=0"`
	Probability int      `json:"probability" validate:"gte=0,lte=100"`
	Notes       *string  `json:"notes,omitempty"`
}

type UpdateOpportunityRequest struct {
	Demands     *[]string `json:"demands,omitempty" validate:"omitempty,min=1,dive,required,max=256"`
	UnitPrice   *float64  `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	Probability *int      `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes       *string   `json:"notes,omitempty"`
	Revision    int64     `json:"revision" validate:"gte=0"`
}

type TransitionRequest struct {
	Status OpportunityStatus `json:"status" validate:"required"`
}

type ListOpportunitiesRequest struct {
	CustomerRef *int64             `json:"customerRef,omitempty"`
	Status      *OpportunityStatus `json:"status,omitempty"`
	Page        int                `json:"page" validate:"gte=0"`
	PerPage     int                `json:"perPage" validate:"gte=0,lte=200"`
}
