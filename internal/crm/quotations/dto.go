package quotations

type PackageOptionRequest struct {
	ID          string  `json:"id,omitempty"`
	PackageName string  `json:"packageName" validate:"required,max=128"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type LineItemRequest struct {
	ID           string                 `json:"id,omitempty"`
	ServiceGroup string                 `json:"serviceGroup" validate:"required,max=128"`
	Service      string                 `json:"service" validate:"required,max=128"`
	Volume       *float64               `json:"volume,omitempty" validate:"omitempty,gte=0"`
	Packages     []PackageOptionRequest `json:"packages" validate:"required,min=1,dive"`
}

type CreateQuotationRequest struct {
	QuotationNo string            `json:"quotationNo" validate:"required,max=64"`
	CustomerRef int64             `json:"customerRef" validate:"required,gt=0"`
	SurveyRef   *int64            `json:"surveyRef,omitempty" validate:"omitempty,gt=0"`
	Packages    []LineItemRequest `json:"packages" validate:"required,min=1,dive"`
	TaxAmount   float64           `json:"taxAmount" validate:"gte=0"`
	Notes       *string           `json:"notes,omitempty"`
}

// UpdateQuotationRequest is a partial edit. SurveyRef links a different
// survey; ClearSurveyRef drops the link instead (absent surveyRef means
// keep, so null alone cannot express an unlink).
type UpdateQuotationRequest struct {
	SurveyRef      *int64             `json:"surveyRef,omitempty" validate:"omitempty,gt=0"`
	ClearSurveyRef bool               `json:"clearSurveyRef,omitempty"`
	Packages       *[]LineItemRequest `json:"packages,omitempty" validate:"omitempty,min=1,dive"`
	TaxAmount      *float64           `json:"taxAmount,omitempty" validate:"omitempty,gte=0"`
	Notes          *string            `json:"notes,omitempty"`
	Revision       int64              `json:"revision" validate:"gte=0"`
}

type SetUnitPriceRequest struct {
	LineIndex   int     `json:"lineIndex" validate:"gte=0"`
	PackageName string  `json:"packageName" validate:"required,max=128"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type SetVolumeRequest struct {
	LineIndex int     `json:"lineIndex" validate:"gte=0"`
	Volume    float64 `json:"volume" validate:"gte=0"`
}

type TransitionRequest struct {
	Status QuotationStatus `json:"status" validate:"required"`
}

type ListQuotationsRequest struct {
	CustomerRef *int64           `json:"customerRef,omitempty"`
	Status      *QuotationStatus `json:"status,omitempty"`
	Page        int              `json:"page" validate:"gte=0"`
	PerPage     int              `json:"perPage" validate:"gte=0,lte=200"`
}

// TransitionResult carries the updated quotation plus a warning when a
// best-effort side effect (survey cascade) failed.
type TransitionResult struct {
	Quotation *Quotation `json:"quotation"`
	Warning   string     `json:"warning,omitempty"`
}
