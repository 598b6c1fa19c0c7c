package order

import (
	"strings"
	"time"
)

// CreatePayload is the inbound shape for creating an order. Every field is
// required except OrderDate (the store assigns the current time when absent)
// and Status (defaults to pending).
type CreatePayload struct {
	OrderID     string     `json:"order_id" validate:"required,notblank"`
	CustomerID  string     `json:"customer_id" validate:"required,notblank"`
	TotalAmount int64      `json:"total_amount" validate:"required,gt=0"`
	Currency    string     `json:"currency" validate:"required,currency_code"`
	Status      Status     `json:"status"`
	OrderDate   *time.Time `json:"order_date"`
}

// Validate checks every field rule and returns a *ValidationError describing
// all failures, or nil. It never touches storage.
func (p *CreatePayload) Validate() error {
	return checkStruct(p)
}

// Normalize trims identity fields, uppercases the currency, and applies the
// pending default. Call after Validate.
func (p *CreatePayload) Normalize() {
	p.OrderID = strings.TrimSpace(p.OrderID)
	p.CustomerID = strings.TrimSpace(p.CustomerID)
	p.Currency = strings.ToUpper(p.Currency)
	if p.Status == "" {
		p.Status = StatusPending
	}
}

// UpdatePayload is the inbound shape for a partial update. All fields are
// optional; only present fields are validated and applied. OrderID is
// deliberately absent: the business id is immutable, as are the internal id
// and created_at.
type UpdatePayload struct {
	CustomerID  *string    `json:"customer_id" validate:"omitempty,notblank"`
	TotalAmount *int64     `json:"total_amount" validate:"omitempty,gt=0"`
	Currency    *string    `json:"currency" validate:"omitempty,currency_code"`
	Status      *Status    `json:"status"`
	OrderDate   *time.Time `json:"order_date"`
}

// Validate checks the rules for every present field.
func (p *UpdatePayload) Validate() error {
	return checkStruct(p)
}

// Apply merges the present fields into o, field by field over the allow-list
// of mutable columns. Identity and bookkeeping columns are never touched.
func (p *UpdatePayload) Apply(o *Order) {
	if p.CustomerID != nil {
		o.CustomerID = strings.TrimSpace(*p.CustomerID)
	}
	if p.TotalAmount != nil {
		o.TotalAmount = *p.TotalAmount
	}
	if p.Currency != nil {
		o.Currency = strings.ToUpper(*p.Currency)
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}
}
