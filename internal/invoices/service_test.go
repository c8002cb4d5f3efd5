package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/orders"
	"github.com/tawreed/tawreed/internal/shared"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{invoices: map[int64]Invoice{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (m *memoryRepo) Create(_ context.Context, inv Invoice) (Invoice, error) {
	for _, existing := range m.invoices {
		if existing.OrderID == inv.OrderID {
			return Invoice{}, ErrOrderAlreadyInvoiced
		}
	}
	inv.ID = m.nextID
	m.nextID++
	m.invoices[inv.ID] = inv
	return inv, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status Status, at time.Time) error {
	inv, ok := m.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	switch status {
	case StatusSent:
		inv.SentAt = &at
	case StatusViewed:
		inv.ViewedAt = &at
	case StatusPaid:
		inv.PaidAt = &at
	}
	m.invoices[id] = inv
	return nil
}

func (m *memoryRepo) ListDueForOverdue(_ context.Context, now time.Time) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if (inv.Status == StatusSent || inv.Status == StatusViewed) && inv.DueDate.Before(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type stubOrders struct {
	order orders.Order
	err   error
}

func (s stubOrders) Get(context.Context, int64) (orders.Order, error) {
	return s.order, s.err
}

type recordingNotifier struct {
	issued  int
	overdue int
}

func (n *recordingNotifier) InvoiceIssued(context.Context, Invoice)  { n.issued++ }
func (n *recordingNotifier) InvoiceOverdue(context.Context, Invoice) { n.overdue++ }

func approvedOrder() orders.Order {
	return orders.Order{ID: 11, Reference: "ORD-1", CustomerID: "cust-1", Status: orders.StatusApproved}
}

func createInput() CreateInput {
	return CreateInput{
		OrderID:       11,
		CustomerEmail: "billing@example.com",
		Subtotal:      100,
		Currency:      "OMR",
	}
}

func TestCreateForOrderAppliesDefaultVAT(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubOrders{order: approvedOrder()}, nil)
	inv, err := svc.CreateForOrder(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, 5.0, inv.TaxPercent)
	require.Equal(t, 5.0, inv.TaxAmount)
	require.Equal(t, 105.0, inv.Total)
	require.Equal(t, StatusDraft, inv.Status)
	require.NotEmpty(t, inv.Number)
}

func TestCreateForOrderZeroVAT(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubOrders{order: approvedOrder()}, nil)
	in := createInput()
	zero := 0.0
	in.TaxPercent = &zero
	inv, err := svc.CreateForOrder(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 0.0, inv.TaxAmount)
	require.Equal(t, 100.0, inv.Total)
}

func TestCreateForOrderRejectsPending(t *testing.T) {
	order := approvedOrder()
	order.Status = orders.StatusPendingApproval
	svc := NewService(newMemoryRepo(), stubOrders{order: order}, nil)
	_, err := svc.CreateForOrder(context.Background(), createInput())
	require.ErrorIs(t, err, ErrOrderNotApproved)
}

func TestCreateForOrderOncePerOrder(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubOrders{order: approvedOrder()}, nil)
	ctx := context.Background()
	_, err := svc.CreateForOrder(ctx, createInput())
	require.NoError(t, err)
	_, err = svc.CreateForOrder(ctx, createInput())
	require.ErrorIs(t, err, ErrOrderAlreadyInvoiced)
}

func TestTransitionMatrix(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusSent, StatusViewed, true},
		{StatusSent, StatusPaid, true},
		{StatusViewed, StatusPaid, true},
		{StatusOverdue, StatusPaid, true},

		{StatusDraft, StatusPaid, false},
		{StatusDraft, StatusViewed, false},
		{StatusDraft, StatusOverdue, false},
		{StatusPaid, StatusSent, false},
		{StatusPaid, StatusOverdue, false},
		{StatusViewed, StatusSent, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestMarkPaidFromDraftFailsClosed(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(newMemoryRepo(), stubOrders{order: approvedOrder()}, notifier)
	ctx := context.Background()

	inv, err := svc.CreateForOrder(ctx, createInput())
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, inv.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	inv, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, inv.Status)
	require.Equal(t, 1, notifier.issued)

	inv, err = svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
}

func TestOverdueScan(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, stubOrders{order: approvedOrder()}, notifier)
	ctx := context.Background()

	inv, err := svc.CreateForOrder(ctx, createInput())
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)

	// Before the due date nothing flips.
	flipped, err := svc.OverdueScan(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, flipped)

	flipped, err = svc.OverdueScan(ctx, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	require.Equal(t, 1, flipped)
	require.Equal(t, 1, notifier.overdue)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, got.Status)

	// Late payment still settles.
	got, err = svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, got.Status)
}
