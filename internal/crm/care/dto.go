package care

type CreateCareRequest struct {
	CustomerRef    int64   `json:"customerRef" validate:"required,gt=0"`
	CareType       string  `json:"careType" validate:"required,max=128"`
	Content        *string `json:"content,omitempty"`
	OpportunityRef *int64  `json:"opportunityRef,omitempty" validate:"omitempty,gt=0"`
	SurveyRef      *int64  `json:"surveyRef,omitempty" validate:"omitempty,gt=0"`
	QuotationRef   *int64  `json:"quotationRef,omitempty" validate:"omitempty,gt=0"`
}

type UpdateCareRequest struct {
	CareType *string `json:"careType,omitempty" validate:"omitempty,max=128"`
	Content  *string `json:"content,omitempty"`
	Revision int64   `json:"revision" validate:"gte=0"`
}

type ListCareRequest struct {
	CustomerRef *int64      `json:"customerRef,omitempty"`
	Status      *CareStatus `json:"status,omitempty"`
	Page        int         `json:"page" validate:"gte=0"`
	PerPage     int         `json:"perPage" validate:"gte=0,lte=200"`
}

// CreateResult carries the new record plus a warning when the best-effort
// append to the opportunity's care history failed.
type CreateResult struct {
	Care    *CustomerCare `json:"care"`
	Warning string        `json:"warning,omitempty"`
}
