package quotations

import "time"

type QuotationStatus string

const (
	StatusDraft     QuotationStatus = "draft"
	StatusSent      QuotationStatus = "sent"
	StatusApproved  QuotationStatus = "approved"
	StatusRejected  QuotationStatus = "rejected"
	StatusCompleted QuotationStatus = "completed"
)

// PackageOption is one priced tier (e.g. "Gói cơ bản", "Premium") inside a
// line item. The invariant totalPrice = unitPrice × line volume holds after
// any edit to either operand.
type PackageOption struct {
	ID          string  `json:"id,omitempty"`
	PackageName string  `json:"packageName"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	IsSelected  bool    `json:"isSelected"`
}

// LineItem is one (serviceGroup, service, volume) tuple carrying one or more
// priced package options. VolumePinned marks a manually overridden volume that
// survey changes must not silently overwrite.
type LineItem struct {
	ID           string          `json:"id,omitempty"`
	ServiceGroup string          `json:"serviceGroup"`
	Service      string          `json:"service"`
	Volume       float64         `json:"volume"`
	VolumePinned bool            `json:"volumePinned,omitempty"`
	Packages     []PackageOption `json:"packages"`
}

type Quotation struct {
	ID          int64           `json:"id"`
	QuotationNo string          `json:"quotationNo"`
	CustomerRef int64           `json:"customerRef"`
	SurveyRef   *int64          `json:"surveyRef,omitempty"`
	Packages    []LineItem      `json:"packages"`
	TaxAmount   float64         `json:"taxAmount"`
	TotalAmount float64         `json:"totalAmount"`
	GrandTotal  float64         `json:"grandTotal"`
	Status      QuotationStatus `json:"status"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Revision    int64           `json:"revision"`
}

// Locked reports whether the quotation's mutating fields are read-only.
func (q *Quotation) Locked() bool {
	return q.Status == StatusApproved || q.Status == StatusCompleted
}
