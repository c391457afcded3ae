package surveys

import "time"

type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusCompleted SurveyStatus = "completed"
	StatusCancelled SurveyStatus = "cancelled"
)

// SurveyItem is one measured entry. Area and volume are derived columns,
// recomputed from length, width and coefficient on every save.
type SurveyItem struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description,omitempty"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Coefficient float64 `json:"coefficient"`
	Area        float64 `json:"area"`
	Volume      float64 `json:"volume"`
}

type Survey struct {
	ID          int64        `json:"id"`
	SurveyNo    string       `json:"surveyNo"`
	CustomerRef int64        `json:"customerRef"`
	Items       []SurveyItem `json:"items"`
	Status      SurveyStatus `json:"status"`
	Notes       *string      `json:"notes,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Revision    int64        `json:"revision"`
}

// TotalVolume sums the derived volume over all items. Quotations linked to
// this survey use it as the default line volume.
func (s *Survey) TotalVolume() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.Volume
	}
	return total
}
