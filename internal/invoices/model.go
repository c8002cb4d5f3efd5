package invoices

import (
	"errors"
	"time"
)

// Status is the invoice sub-workflow state.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusViewed  Status = "viewed"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// transitions is the allowed matrix. Overdue is only ever entered by the
// scheduled scan, never by an API call; a late payment still settles it.
// Nothing leaves paid.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusSent},
	StatusSent:    {StatusViewed, StatusPaid, StatusOverdue},
	StatusViewed:  {StatusPaid, StatusOverdue},
	StatusOverdue: {StatusPaid},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultTaxPercent is the VAT rate applied when none is given.
const DefaultTaxPercent = 5.0

// Invoice bills one approved order. OrderID is unique: an order is invoiced
// at most once.
type Invoice struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	OrderID       int64      `json:"order_id"`
	CustomerID    string     `json:"customer_id"`
	CustomerEmail string     `json:"customer_email"`
	Subtotal      float64    `json:"subtotal"`
	TaxPercent    float64    `json:"tax_percent"`
	TaxAmount     float64    `json:"tax_amount"`
	Total         float64    `json:"total"`
	Currency      string     `json:"currency"`
	Status        Status     `json:"status"`
	DueDate       time.Time  `json:"due_date"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	ViewedAt      *time.Time `json:"viewed_at,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ErrOrderAlreadyInvoiced rejects a second invoice for one order.
var ErrOrderAlreadyInvoiced = errors.New("invoices: order already invoiced")

// ErrOrderNotApproved rejects invoicing an order that never cleared approval.
var ErrOrderNotApproved = errors.New("invoices: order is not approved")
