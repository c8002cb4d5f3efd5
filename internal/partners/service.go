package partners

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tawreed/tawreed/internal/money"
	"github.com/tawreed/tawreed/internal/shared"
)

// Notifier sends the payout settlement email in the background.
type Notifier interface {
	PartnerPayout(ctx context.Context, p Partner, payout Payout)
}

// Service manages shipping partners and their settlements.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CreateInput registers a partner.
type CreateInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Partner, error) {
	return s.repo.Create(ctx, Partner{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
	})
}

// UpdateInput patches partner contact details.
type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Partner, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Partner{}, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Partner{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Partner, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Partner, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// PayoutInput settles an amount with a partner.
type PayoutInput struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

// Settle records the payout and emails the partner.
func (s *Service) Settle(ctx context.Context, partnerID int64, in PayoutInput) (Payout, error) {
	p, err := s.repo.Get(ctx, partnerID)
	if err != nil {
		return Payout{}, err
	}
	if !p.Active {
		return Payout{}, fmt.Errorf("partners: %s is deactivated: %w", p.Name, shared.ErrConflict)
	}
	currency := strings.ToUpper(in.Currency)
	payout, err := s.repo.RecordPayout(ctx, Payout{
		PartnerID: partnerID,
		Amount:    money.Round(in.Amount, currency),
		Currency:  currency,
		Reference: "PAY-" + strings.ToUpper(uuid.NewString()[:8]),
	})
	if err != nil {
		return Payout{}, err
	}
	if s.notifier != nil {
		s.notifier.PartnerPayout(ctx, p, payout)
	}
	return payout, nil
}

func (s *Service) ListPayouts(ctx context.Context, partnerID int64) ([]Payout, error) {
	return s.repo.ListPayouts(ctx, partnerID)
}
