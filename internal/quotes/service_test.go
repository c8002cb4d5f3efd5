package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/freight"
	"github.com/tawreed/tawreed/internal/rates"
	"github.com/tawreed/tawreed/internal/shared"
)

type memoryRepo struct {
	quotes map[int64]Quote
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{quotes: map[int64]Quote{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters) ([]Quote, int, error) {
	var out []Quote
	for _, q := range m.quotes {
		out = append(out, q)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return Quote{}, shared.ErrNotFound
	}
	return q, nil
}

func (m *memoryRepo) Create(_ context.Context, q Quote) (Quote, error) {
	q.ID = m.nextID
	m.nextID++
	m.quotes[q.ID] = q
	return q, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	q, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.Status = status
	m.quotes[id] = q
	return nil
}

type stubMatcher struct {
	agreement rates.Agreement
	err       error
}

func (s stubMatcher) Match(context.Context, string, string, rates.RateType, time.Time) (rates.Agreement, error) {
	return s.agreement, s.err
}

func airAgreement() rates.Agreement {
	return rates.Agreement{
		ID:            7,
		Origin:        "Guangzhou",
		Destination:   "Muscat",
		RateType:      rates.RateAirPerKg,
		SellPrice:     4.0,
		MarginPercent: 10,
		Currency:      "OMR",
	}
}

func airInput() CreateInput {
	return CreateInput{
		CustomerName:  "Al Noor Trading",
		CustomerEmail: "ops@alnoor.example",
		Origin:        "Guangzhou",
		Destination:   "Muscat",
		RateType:      rates.RateAirPerKg,
		Items: []freight.Item{{
			Length: 40, Width: 30, Height: 30,
			DimensionUnit: freight.UnitCentimeter,
			Weight:        10, WeightUnit: freight.UnitKilogram,
			Quantity: 2,
		}},
	}
}

func TestCreatePricesAgainstMatchedAgreement(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubMatcher{agreement: airAgreement()})
	q, err := svc.Create(context.Background(), "user-1", airInput())
	require.NoError(t, err)

	// 2 × 40×30×30cm = 72000 cm³/6000 = 12 kg volumetric; actual 20 kg wins.
	require.Equal(t, 20.0, q.Breakdown.Calculations.ChargeableWeightKg)
	require.Equal(t, 80.0, q.Breakdown.BaseRate)
	require.Equal(t, 88.0, q.Breakdown.Total) // +10% margin
	require.Equal(t, StatusDraft, q.Status)
	require.Equal(t, "OMR", q.Currency)
	require.EqualValues(t, 7, q.AgreementID)
	require.NotEmpty(t, q.Reference)
}

func TestCreateNoRateAvailable(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubMatcher{err: rates.ErrNoRateAvailable})
	_, err := svc.Create(context.Background(), "user-1", airInput())
	require.ErrorIs(t, err, rates.ErrNoRateAvailable)
}

func TestCreateContainerBillsFlat(t *testing.T) {
	a := airAgreement()
	a.RateType = rates.RateContainer40ft
	a.SellPrice = 1200
	a.MarginPercent = 0
	svc := NewService(newMemoryRepo(), stubMatcher{agreement: a})

	in := airInput()
	in.RateType = rates.RateContainer40ft
	q, err := svc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.Equal(t, 1200.0, q.Breakdown.Total)
}

func TestCreateAppliesMinChargeFloor(t *testing.T) {
	a := airAgreement()
	a.RateType = rates.RateSeaPerCBM
	a.SellPrice = 50
	a.MarginPercent = 0
	floor := 100.0
	a.MinCharge = &floor
	svc := NewService(newMemoryRepo(), stubMatcher{agreement: a})

	in := airInput()
	in.RateType = rates.RateSeaPerCBM // 0.072 CBM × 50 = 3.6, under the floor
	q, err := svc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.Equal(t, 100.0, q.Breakdown.Total)
	require.True(t, q.Breakdown.MinChargeApplied)
}

func TestTransitionLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubMatcher{agreement: airAgreement()})
	ctx := context.Background()

	q, err := svc.Create(ctx, "user-1", airInput())
	require.NoError(t, err)

	// draft → accepted skips sent and must fail closed.
	_, err = svc.Transition(ctx, q.ID, StatusAccepted)
	require.ErrorIs(t, err, shared.ErrConflict)

	q, err = svc.Transition(ctx, q.ID, StatusSent)
	require.NoError(t, err)
	require.Equal(t, StatusSent, q.Status)

	q, err = svc.Transition(ctx, q.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, q.Status)

	// accepted is terminal.
	_, err = svc.Transition(ctx, q.ID, StatusRejected)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestAcceptPastValidityExpires(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubMatcher{agreement: airAgreement()})
	ctx := context.Background()

	q, err := svc.Create(ctx, "user-1", airInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, q.ID, StatusSent)
	require.NoError(t, err)

	svc.nowFn = func() time.Time { return time.Now().AddDate(0, 0, 30) }
	_, err = svc.Transition(ctx, q.ID, StatusAccepted)
	require.ErrorIs(t, err, shared.ErrConflict)

	got, err := repo.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, got.Status)
}
