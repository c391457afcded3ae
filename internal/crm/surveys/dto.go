package surveys

type SurveyItemRequest struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Length      float64 `json:"length" validate:"gte=0"`
	Width       float64 `json:"width" validate:"gte=0"`
	Coefficient float64 `json:"coefficient" validate:"gte=0"`
}

type CreateSurveyRequest struct {
	SurveyNo    string              `json:"surveyNo" validate:"required,max=64"`
	CustomerRef int64               `json:"customerRef" validate:"required,gt=0"`
	Items       []SurveyItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes       *string             `json:"notes,omitempty"`
}

type UpdateSurveyRequest struct {
	Items    *[]SurveyItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Notes    *string              `json:"notes,omitempty"`
	Revision int64                `json:"revision" validate:"gte=0"`
}

type ListSurveysRequest struct {
	CustomerRef *int64        `json:"customerRef,omitempty"`
	Status      *SurveyStatus `json:"status,omitempty"`
	Page        int           `json:"page" validate:"gte=0"`
	PerPage     int           `json:"perPage" validate:"gte=0,lte=200"`
}
