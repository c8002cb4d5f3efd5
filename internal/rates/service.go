package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tawreed/tawreed/internal/platform/cache"
)

// Service orchestrates rate agreement operations. Lane matches are cached
// behind the shared cache policy because every quote consults them.
type Service struct {
	repo  Repository
	store *cache.Store
}

// NewService builds Service. The cache store may be nil in tests.
func NewService(repo Repository, store *cache.Store) *Service {
	return &Service{repo: repo, store: store}
}

// CreateInput carries a new agreement.
type CreateInput struct {
	Origin        string   `json:"origin" validate:"required"`
	Destination   string   `json:"destination" validate:"required"`
	RateType      RateType `json:"rate_type" validate:"required"`
	BuyPrice      float64  `json:"buy_price" validate:"gte=0"`
	SellPrice     float64  `json:"sell_price" validate:"gte=0"`
	MarginPercent float64  `json:"margin_percent" validate:"gte=0"`
	MinCharge     *float64 `json:"min_charge,omitempty" validate:"omitempty,gte=0"`
	Currency      string   `json:"currency" validate:"required,len=3"`
	ValidFrom     time.Time `json:"valid_from" validate:"required"`
	ValidUntil    time.Time `json:"valid_until" validate:"required"`
}

// Create inserts an active agreement after basic window checks.
func (s *Service) Create(ctx context.Context, in CreateInput) (Agreement, error) {
	if !in.RateType.IsValid() {
		return Agreement{}, fmt.Errorf("rates: invalid rate type %q", in.RateType)
	}
	if in.ValidUntil.Before(in.ValidFrom) {
		return Agreement{}, errors.New("rates: valid_until must be after valid_from")
	}
	a, err := s.repo.Create(ctx, Agreement{
		Origin:        strings.TrimSpace(in.Origin),
		Destination:   strings.TrimSpace(in.Destination),
		RateType:      in.RateType,
		BuyPrice:      in.BuyPrice,
		SellPrice:     in.SellPrice,
		MarginPercent: in.MarginPercent,
		MinCharge:     in.MinCharge,
		Currency:      strings.ToUpper(in.Currency),
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
	})
	if err != nil {
		return Agreement{}, fmt.Errorf("create agreement: %w", err)
	}
	s.invalidate(ctx, a)
	return a, nil
}

// UpdateInput carries editable agreement fields.
type UpdateInput struct {
	BuyPrice      *float64   `json:"buy_price,omitempty" validate:"omitempty,gte=0"`
	SellPrice     *float64   `json:"sell_price,omitempty" validate:"omitempty,gte=0"`
	MarginPercent *float64   `json:"margin_percent,omitempty" validate:"omitempty,gte=0"`
	MinCharge     *float64   `json:"min_charge,omitempty" validate:"omitempty,gte=0"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

// Update edits prices and the validity window of an agreement.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Agreement, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Agreement{}, fmt.Errorf("get agreement: %w", err)
	}
	if in.BuyPrice != nil {
		existing.BuyPrice = *in.BuyPrice
	}
	if in.SellPrice != nil {
		existing.SellPrice = *in.SellPrice
	}
	if in.MarginPercent != nil {
		existing.MarginPercent = *in.MarginPercent
	}
	if in.MinCharge != nil {
		existing.MinCharge = in.MinCharge
	}
	if in.ValidFrom != nil {
		existing.ValidFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		existing.ValidUntil = *in.ValidUntil
	}
	if existing.ValidUntil.Before(existing.ValidFrom) {
		return Agreement{}, errors.New("rates: valid_until must be after valid_from")
	}
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Agreement{}, fmt.Errorf("update agreement: %w", err)
	}
	s.invalidate(ctx, existing)
	return s.repo.Get(ctx, id)
}

// Deactivate soft-deactivates an agreement.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, a)
	return nil
}

// Get fetches a single agreement.
func (s *Service) Get(ctx context.Context, id int64) (Agreement, error) {
	return s.repo.Get(ctx, id)
}

// List returns agreements and the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Agreement, int, error) {
	return s.repo.List(ctx, filters)
}

// Match finds the active agreement for a lane at the given instant.
func (s *Service) Match(ctx context.Context, origin, destination string, rateType RateType, at time.Time) (Agreement, error) {
	load := func(ctx context.Context) (interface{}, error) {
		a, err := s.repo.Match(ctx, origin, destination, rateType, at)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	if s.store == nil {
		a, err := s.repo.Match(ctx, origin, destination, rateType, at)
		if err != nil {
			return Agreement{}, err
		}
		return a, nil
	}
	var a Agreement
	key := matchKey(origin, destination, rateType)
	if err := s.store.FetchJSON(ctx, key, &a, load); err != nil {
		return Agreement{}, err
	}
	return a, nil
}

// ExpireOutdated deactivates agreements past their validity window.
func (s *Service) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeactivateExpired(ctx, now)
}

func (s *Service) invalidate(ctx context.Context, a Agreement) {
	if s.store == nil {
		return
	}
	_ = s.store.Invalidate(ctx, matchKey(a.Origin, a.Destination, a.RateType))
}

func matchKey(origin, destination string, rateType RateType) string {
	return strings.Join([]string{"rates", "match", origin, destination, string(rateType)}, ":")
}
