package care

import (
	"time"

	"github.com/infowows/trg-crm-sub000/internal/platform/blob"
)

// CareStatus values are the Vietnamese labels stored by the existing data
// set. They are wire values, not display strings, so they stay as-is.
type CareStatus string

const (
	StatusPending   CareStatus = "Chờ báo cáo"
	StatusDone      CareStatus = "Hoàn thành"
	StatusCancelled CareStatus = "Hủy"
)

// CustomerCare is one follow-up activity on a customer. It may reference an
// opportunity, a survey and a quotation, all optional and independently
// lifecycled.
type CustomerCare struct {
	ID             int64         `json:"id"`
	CareID         string        `json:"careId"`
	CustomerRef    int64         `json:"customerRef"`
	CareType       string        `json:"careType"`
	Content        *string       `json:"content,omitempty"`
	OpportunityRef *int64        `json:"opportunityRef,omitempty"`
	SurveyRef      *int64        `json:"surveyRef,omitempty"`
	QuotationRef   *int64        `json:"quotationRef,omitempty"`
	Status         CareStatus    `json:"status"`
	CareResult     *string       `json:"careResult,omitempty"`
	RejectGroup    *string       `json:"rejectGroup,omitempty"`
	RejectReason   *string       `json:"rejectReason,omitempty"`
	Attachments    []blob.Object `json:"attachments"`
	CreatedBy      string        `json:"createdBy"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Revision       int64         `json:"revision"`
}

// Terminal reports whether the record has left the pending state. Terminal
// records accept no further edits or transitions.
func (c *CustomerCare) Terminal() bool {
	return c.Status == StatusDone || c.Status == StatusCancelled
}
