package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tawreed/tawreed/internal/freight"
	"github.com/tawreed/tawreed/internal/money"
	"github.com/tawreed/tawreed/internal/rates"
	"github.com/tawreed/tawreed/internal/shared"
)

// RateMatcher is the slice of the rates service quotes depend on.
type RateMatcher interface {
	Match(ctx context.Context, origin, destination string, rateType rates.RateType, at time.Time) (rates.Agreement, error)
}

// Service prices and tracks quotes.
type Service struct {
	repo   Repository
	rates  RateMatcher
	nowFn  func() time.Time
	refGen func() string
}

func NewService(repo Repository, matcher RateMatcher) *Service {
	return &Service{
		repo:   repo,
		rates:  matcher,
		nowFn:  time.Now,
		refGen: newReference,
	}
}

func newReference() string {
	return "Q-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateInput is the quote request payload.
type CreateInput struct {
	CustomerName  string              `json:"customer_name" validate:"required"`
	CustomerEmail string              `json:"customer_email" validate:"required,email"`
	Origin        string              `json:"origin" validate:"required"`
	Destination   string              `json:"destination" validate:"required"`
	RateType      rates.RateType      `json:"rate_type" validate:"required"`
	Items         []freight.Item      `json:"items" validate:"required,min=1,dive"`
	Surcharges    []freight.Surcharge `json:"surcharges"`
	ValidDays     int                 `json:"valid_days" validate:"omitempty,min=1,max=90"`
}

// Create matches the lane's active agreement, prices the consignment and
// persists the quote in draft.
func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Quote, error) {
	if !in.RateType.IsValid() {
		return Quote{}, fmt.Errorf("quotes: invalid rate type %q", in.RateType)
	}
	now := s.nowFn()

	agreement, err := s.rates.Match(ctx, strings.TrimSpace(in.Origin), strings.TrimSpace(in.Destination), in.RateType, now)
	if err != nil {
		return Quote{}, err
	}

	totals, err := freight.Calculate(in.Items)
	if err != nil {
		return Quote{}, err
	}

	price := freight.PriceInput{
		Surcharges: in.Surcharges,
		Margin:     freight.Margin{Percent: agreement.MarginPercent},
	}
	if in.RateType.IsContainer() {
		price.FlatRate = agreement.SellPrice
		price.Mode = freight.ModeSea
	} else {
		price.Rate = agreement.SellPrice
		price.Mode = freight.ModeSea
		if in.RateType == rates.RateAirPerKg {
			price.Mode = freight.ModeAir
		}
	}
	if agreement.MinCharge != nil {
		price.MinCharge = *agreement.MinCharge
	}

	breakdown, err := freight.BuildBreakdown(totals, price)
	if err != nil {
		return Quote{}, err
	}
	breakdown.Total = money.Round(breakdown.Total, agreement.Currency)

	validDays := in.ValidDays
	if validDays == 0 {
		validDays = 14
	}

	return s.repo.Create(ctx, Quote{
		Reference:     s.refGen(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Origin:        agreement.Origin,
		Destination:   agreement.Destination,
		RateType:      in.RateType,
		AgreementID:   agreement.ID,
		Items:         in.Items,
		Breakdown:     breakdown,
		Currency:      agreement.Currency,
		Status:        StatusDraft,
		ValidUntil:    now.AddDate(0, 0, validDays),
		CreatedBy:     createdBy,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Quote, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Quote, int, error) {
	return s.repo.List(ctx, filters)
}

// Transition moves a quote to the requested status, failing closed on any
// edge the lifecycle does not allow. Accepting a quote past its validity
// expires it instead.
func (s *Service) Transition(ctx context.Context, id int64, to Status) (Quote, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	if to == StatusAccepted && s.nowFn().After(q.ValidUntil) && CanTransition(q.Status, StatusExpired) {
		if err := s.repo.UpdateStatus(ctx, id, StatusExpired); err != nil {
			return Quote{}, err
		}
		return Quote{}, fmt.Errorf("quotes: quote %s has expired: %w", q.Reference, shared.ErrConflict)
	}
	if !CanTransition(q.Status, to) {
		return Quote{}, fmt.Errorf("quotes: cannot move %s from %s to %s: %w", q.Reference, q.Status, to, shared.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return Quote{}, err
	}
	q.Status = to
	return q, nil
}
