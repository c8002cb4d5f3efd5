package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tawreed/tawreed/internal/money"
	"github.com/tawreed/tawreed/internal/orders"
	"github.com/tawreed/tawreed/internal/shared"
)

// OrderGetter is the slice of the orders service invoicing needs.
type OrderGetter interface {
	Get(ctx context.Context, id int64) (orders.Order, error)
}

// Notifier delivers invoice lifecycle mail in the background.
type Notifier interface {
	InvoiceIssued(ctx context.Context, inv Invoice)
	InvoiceOverdue(ctx context.Context, inv Invoice)
}

// Service manages invoice issuing and its sub-workflow.
type Service struct {
	repo     Repository
	orders   OrderGetter
	notifier Notifier
	nowFn    func() time.Time
	numGen   func() string
}

func NewService(repo Repository, orderGetter OrderGetter, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		orders:   orderGetter,
		notifier: notifier,
		nowFn:    time.Now,
		numGen:   newNumber,
	}
}

func newNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateInput issues a draft invoice for an approved order.
type CreateInput struct {
	OrderID       int64    `json:"order_id" validate:"required"`
	CustomerEmail string   `json:"customer_email" validate:"required,email"`
	Subtotal      float64  `json:"subtotal" validate:"gt=0"`
	TaxPercent    *float64 `json:"tax_percent" validate:"omitempty,min=0,max=100"`
	Currency      string   `json:"currency" validate:"required,len=3"`
	DueDays       int      `json:"due_days" validate:"omitempty,min=1,max=365"`
}

// CreateForOrder issues the invoice. The order must have cleared approval
// and must not be invoiced already.
func (s *Service) CreateForOrder(ctx context.Context, in CreateInput) (Invoice, error) {
	order, err := s.orders.Get(ctx, in.OrderID)
	if err != nil {
		return Invoice{}, err
	}
	switch order.Status {
	case orders.StatusApproved, orders.StatusInProgress, orders.StatusDelivered:
	default:
		return Invoice{}, fmt.Errorf("%w: order %s is %s", ErrOrderNotApproved, order.Reference, order.Status)
	}

	taxPercent := DefaultTaxPercent
	if in.TaxPercent != nil {
		taxPercent = *in.TaxPercent
	}
	currency := strings.ToUpper(in.Currency)
	subtotal := money.Round(in.Subtotal, currency)
	taxAmount := money.Tax(subtotal, taxPercent, currency)

	dueDays := in.DueDays
	if dueDays == 0 {
		dueDays = 30
	}

	return s.repo.Create(ctx, Invoice{
		Number:        s.numGen(),
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Subtotal:      subtotal,
		TaxPercent:    taxPercent,
		TaxAmount:     taxAmount,
		Total:         money.Round(subtotal+taxAmount, currency),
		Currency:      currency,
		Status:        StatusDraft,
		DueDate:       s.nowFn().AddDate(0, 0, dueDays),
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Invoice, int, error) {
	return s.repo.List(ctx, filters)
}

// Send issues the draft to the customer.
func (s *Service) Send(ctx context.Context, id int64) (Invoice, error) {
	inv, err := s.transition(ctx, id, StatusSent)
	if err != nil {
		return Invoice{}, err
	}
	if s.notifier != nil {
		s.notifier.InvoiceIssued(ctx, inv)
	}
	return inv, nil
}

// MarkViewed records the customer opening the invoice.
func (s *Service) MarkViewed(ctx context.Context, id int64) (Invoice, error) {
	return s.transition(ctx, id, StatusViewed)
}

// MarkPaid settles the invoice. A draft can never be paid.
func (s *Service) MarkPaid(ctx context.Context, id int64) (Invoice, error) {
	return s.transition(ctx, id, StatusPaid)
}

// OverdueScan flips every sent or viewed invoice past its due date to
// overdue and notifies. The worker runs it on a schedule.
func (s *Service) OverdueScan(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueForOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	var flipped int
	for _, inv := range due {
		if !CanTransition(inv.Status, StatusOverdue) {
			continue
		}
		if err := s.repo.SetStatus(ctx, inv.ID, StatusOverdue, now); err != nil {
			return flipped, err
		}
		flipped++
		if s.notifier != nil {
			inv.Status = StatusOverdue
			s.notifier.InvoiceOverdue(ctx, inv)
		}
	}
	return flipped, nil
}

func (s *Service) transition(ctx context.Context, id int64, to Status) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if !CanTransition(inv.Status, to) {
		return Invoice{}, fmt.Errorf("invoices: cannot move %s from %s to %s: %w", inv.Number, inv.Status, to, shared.ErrConflict)
	}
	now := s.nowFn()
	if err := s.repo.SetStatus(ctx, id, to, now); err != nil {
		return Invoice{}, err
	}
	inv.Status = to
	switch to {
	case StatusSent:
		inv.SentAt = &now
	case StatusViewed:
		inv.ViewedAt = &now
	case StatusPaid:
		inv.PaidAt = &now
	}
	return inv, nil
}
