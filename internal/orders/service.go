package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tawreed/tawreed/internal/inventory"
	"github.com/tawreed/tawreed/internal/shared"
)

// StockAdjuster is the slice of the inventory repository orders need. Both
// calls run inside the approval transaction.
type StockAdjuster interface {
	Deduct(ctx context.Context, tx pgx.Tx, id int64, qty int) (inventory.StockItem, error)
	Restock(ctx context.Context, tx pgx.Tx, id int64, qty int) (inventory.StockItem, error)
}

// TxRunner executes fn within one database transaction.
type TxRunner func(ctx context.Context, fn func(pgx.Tx) error) error

// Service drives the order workflow. Approval is atomic: the status change
// and every stock movement commit together or not at all.
type Service struct {
	repo   Repository
	stock  StockAdjuster
	runTx  TxRunner
	nowFn  func() time.Time
	refGen func() string
}

func NewService(repo Repository, stock StockAdjuster, runTx TxRunner) *Service {
	return &Service{
		repo:   repo,
		stock:  stock,
		runTx:  runTx,
		nowFn:  time.Now,
		refGen: newReference,
	}
}

func newReference() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateInput opens an order pending approval.
type CreateInput struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Type       Type   `json:"type" validate:"required,oneof=outbound reorder"`
	Lines      []Line `json:"lines" validate:"required,min=1,dive"`
	Notes      string `json:"notes"`
}

func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Order, error) {
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return Order{}, fmt.Errorf("orders: line for item %d needs a positive quantity", line.StockItemID)
		}
	}
	return s.repo.Create(ctx, Order{
		Reference:  s.refGen(),
		CustomerID: strings.TrimSpace(in.CustomerID),
		Type:       in.Type,
		Lines:      in.Lines,
		Status:     StatusPendingApproval,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedBy:  createdBy,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	return s.repo.List(ctx, filters)
}

// Approve moves the order to approved and applies its stock movements in one
// transaction. An insufficient line rolls everything back.
func (s *Service) Approve(ctx context.Context, id int64, approvedBy string) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, StatusApproved) {
		return Order{}, fmt.Errorf("orders: cannot approve %s from %s: %w", o.Reference, o.Status, shared.ErrConflict)
	}

	now := s.nowFn()
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		for _, line := range o.Lines {
			if o.Type == TypeReorder {
				if _, err := s.stock.Restock(ctx, tx, line.StockItemID, line.Quantity); err != nil {
					return fmt.Errorf("restock item %d: %w", line.StockItemID, err)
				}
				continue
			}
			if _, err := s.stock.Deduct(ctx, tx, line.StockItemID, line.Quantity); err != nil {
				return fmt.Errorf("deduct item %d: %w", line.StockItemID, err)
			}
		}
		return s.repo.ApproveTx(ctx, tx, o.ID, approvedBy, now)
	})
	if err != nil {
		return Order{}, err
	}

	o.Status = StatusApproved
	o.ApprovedBy = approvedBy
	o.ApprovedAt = &now
	return o, nil
}

// Transition handles the non-approval moves: start, deliver, cancel.
func (s *Service) Transition(ctx context.Context, id int64, to Status) (Order, error) {
	if to == StatusApproved {
		return Order{}, fmt.Errorf("orders: approval has its own path: %w", shared.ErrConflict)
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, fmt.Errorf("orders: cannot move %s from %s to %s: %w", o.Reference, o.Status, to, shared.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return Order{}, err
	}
	o.Status = to
	return o, nil
}
