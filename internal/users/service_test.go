package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/shared"
)

type memoryRepo struct {
	profiles map[string]Profile
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{profiles: map[string]Profile{}}
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters) ([]Profile, int, error) {
	var out []Profile
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Upsert(_ context.Context, p Profile) (Profile, error) {
	p.UpdatedAt = time.Now()
	m.profiles[p.ID] = p
	return p, nil
}

func (m *memoryRepo) SetRole(_ context.Context, id, role string) error {
	p, ok := m.profiles[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Role = role
	m.profiles[id] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

type stubPurger struct {
	purged map[string]int64
}

func (s *stubPurger) DeleteByCustomer(_ context.Context, customerID string) (int64, error) {
	return s.purged[customerID], nil
}

func TestSyncRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Sync(context.Background(), SyncInput{
		ID: "u1", Name: "A", Email: "a@example.com", Role: "superuser",
	})
	require.Error(t, err)
}

func TestSyncNormalisesEmail(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	p, err := svc.Sync(context.Background(), SyncInput{
		ID: "u1", Name: "A", Email: " Ops@Example.COM ", Role: "employee",
	})
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", p.Email)
}

func TestDeletePurgesInventory(t *testing.T) {
	repo := newMemoryRepo()
	purger := &stubPurger{purged: map[string]int64{"u2": 4}}
	svc := NewService(repo, purger, nil)
	ctx := context.Background()

	_, err := svc.Sync(ctx, SyncInput{ID: "u2", Name: "B", Email: "b@example.com", Role: "viewer"})
	require.NoError(t, err)

	purged, err := svc.Delete(ctx, "admin-1", "u2")
	require.NoError(t, err)
	require.EqualValues(t, 4, purged)

	_, err = repo.Get(ctx, "u2")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteSelfFails(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Delete(context.Background(), "u1", "u1")
	require.ErrorIs(t, err, shared.ErrConflict)
}
