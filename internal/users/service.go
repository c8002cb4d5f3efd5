package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/tawreed/tawreed/internal/roles"
	"github.com/tawreed/tawreed/internal/shared"
)

// StockPurger removes a deleted user's customer-scoped inventory.
type StockPurger interface {
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
}

// Service administers profiles. The identity provider owns creation; this
// side only mirrors, re-roles and removes.
type Service struct {
	repo  Repository
	stock StockPurger
	audit *shared.AuditLogger
}

func NewService(repo Repository, stock StockPurger, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, stock: stock, audit: audit}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Profile, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.Get(ctx, id)
}

// SyncInput mirrors the provider's profile payload.
type SyncInput struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
	Phone string `json:"phone"`
}

// Sync upserts a profile pushed by the identity provider.
func (s *Service) Sync(ctx context.Context, in SyncInput) (Profile, error) {
	if !roles.Known(roles.Role(in.Role)) {
		return Profile{}, fmt.Errorf("users: unknown role %q", in.Role)
	}
	return s.repo.Upsert(ctx, Profile{
		ID:    in.ID,
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Role:  in.Role,
		Phone: strings.TrimSpace(in.Phone),
	})
}

// SetRole reassigns a profile's role.
func (s *Service) SetRole(ctx context.Context, actorID, id, role string) error {
	if !roles.Known(roles.Role(role)) {
		return fmt.Errorf("users: unknown role %q", role)
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "users.set_role",
			Entity:   "profile",
			EntityID: id,
			Meta:     map[string]any{"role": role},
		})
	}
	return nil
}

// Delete removes the profile and purges the inventory scoped to it. Users
// cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id string) (int64, error) {
	if actorID == id {
		return 0, fmt.Errorf("users: cannot delete own account: %w", shared.ErrConflict)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return 0, err
	}
	var purged int64
	if s.stock != nil {
		var err error
		purged, err = s.stock.DeleteByCustomer(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("users: purge inventory for %s: %w", id, err)
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "users.delete",
			Entity:   "profile",
			EntityID: id,
			Meta:     map[string]any{"purged_stock_rows": purged},
		})
	}
	return purged, nil
}
