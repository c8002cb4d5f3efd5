package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tawreed/tawreed/internal/freight"
	"github.com/tawreed/tawreed/internal/shared"
)

// Notifier fans out status-change notifications. Implementations enqueue
// background tasks; delivery failures never block the workflow.
type Notifier interface {
	ShipmentStatusChanged(ctx context.Context, s Shipment)
}

// Service drives the shipment workflow.
type Service struct {
	repo     Repository
	notifier Notifier
	nowFn    func() time.Time
	refGen   func() string
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		nowFn:    time.Now,
		refGen:   newReference,
	}
}

func newReference() string {
	return "SH-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateInput opens a shipment at the first stage.
type CreateInput struct {
	QuoteID       *int64       `json:"quote_id"`
	CustomerName  string       `json:"customer_name" validate:"required"`
	CustomerEmail string       `json:"customer_email" validate:"required,email"`
	Origin        string       `json:"origin" validate:"required"`
	Destination   string       `json:"destination" validate:"required"`
	Mode          freight.Mode `json:"mode" validate:"required,oneof=sea air"`
	Amount        float64      `json:"amount" validate:"min=0"`
	Currency      string       `json:"currency" validate:"required,len=3"`
}

func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Shipment, error) {
	now := s.nowFn()
	return s.repo.Create(ctx, Shipment{
		Reference:     s.refGen(),
		QuoteID:       in.QuoteID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Origin:        strings.TrimSpace(in.Origin),
		Destination:   strings.TrimSpace(in.Destination),
		Mode:          in.Mode,
		Status:        StageReceivedFromSupplier,
		Milestones:    map[Stage]time.Time{StageReceivedFromSupplier: now},
		Amount:        in.Amount,
		Currency:      strings.ToUpper(in.Currency),
		CreatedBy:     createdBy,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Shipment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Shipment, int, error) {
	return s.repo.List(ctx, filters)
}

// Track looks a shipment up by its public reference.
func (s *Service) Track(ctx context.Context, reference string) (Shipment, []TimelineEntry, error) {
	sh, err := s.repo.GetByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		return Shipment{}, nil, err
	}
	return sh, sh.Timeline(), nil
}

// Advance moves the shipment one stage forward and records the milestone.
func (s *Service) Advance(ctx context.Context, id int64) (Shipment, error) {
	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	next := sh.Status.Next()
	if next == "" || !CanTransition(sh.Status, next) {
		return Shipment{}, fmt.Errorf("shipments: %s cannot advance from %s: %w", sh.Reference, sh.Status, shared.ErrConflict)
	}
	return s.move(ctx, sh, next)
}

// Reject absorbs the shipment from any non-terminal stage.
func (s *Service) Reject(ctx context.Context, id int64) (Shipment, error) {
	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if !CanTransition(sh.Status, StageRejected) {
		return Shipment{}, fmt.Errorf("shipments: %s cannot be rejected from %s: %w", sh.Reference, sh.Status, shared.ErrConflict)
	}
	return s.move(ctx, sh, StageRejected)
}

// AssignPartner attaches a shipping partner and optional driver. Assignment
// is only meaningful before the partner has accepted.
func (s *Service) AssignPartner(ctx context.Context, id, partnerID int64, driverName string) (Shipment, error) {
	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if sh.Status.IsTerminal() {
		return Shipment{}, fmt.Errorf("shipments: %s is %s: %w", sh.Reference, sh.Status, shared.ErrConflict)
	}
	sh.PartnerID = &partnerID
	sh.DriverName = strings.TrimSpace(driverName)
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shipment{}, err
	}
	return sh, nil
}

// PartnerAccept is the partner taking the load: pending_partner_acceptance
// moves to in_transit. Only the assigned partner may accept.
func (s *Service) PartnerAccept(ctx context.Context, id, partnerID int64) (Shipment, error) {
	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if sh.Status != StagePendingPartnerAcceptance {
		return Shipment{}, fmt.Errorf("shipments: %s is not awaiting acceptance: %w", sh.Reference, shared.ErrConflict)
	}
	if sh.PartnerID == nil || *sh.PartnerID != partnerID {
		return Shipment{}, shared.ErrForbidden
	}
	return s.move(ctx, sh, StageInTransit)
}

// MarkPaid flags the shipment as settled. Payments verification calls this.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	return s.repo.MarkPaid(ctx, id)
}

func (s *Service) move(ctx context.Context, sh Shipment, to Stage) (Shipment, error) {
	sh.Status = to
	if sh.Milestones == nil {
		sh.Milestones = map[Stage]time.Time{}
	}
	sh.Milestones[to] = s.nowFn()
	if err := s.repo.Update(ctx, sh); err != nil {
		return Shipment{}, err
	}
	if s.notifier != nil {
		s.notifier.ShipmentStatusChanged(ctx, sh)
	}
	return sh, nil
}
