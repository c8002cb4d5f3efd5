package freight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func airTotals(t *testing.T) Totals {
	t.Helper()
	totals, err := Calculate([]Item{
		{Length: 100, Width: 50, Height: 30, DimensionUnit: UnitCentimeter, Weight: 40, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	return totals
}

func TestBreakdownAirWithSurchargesAndMargin(t *testing.T) {
	totals := airTotals(t)
	// chargeable = max(40, 25) = 40
	b, err := BuildBreakdown(totals, PriceInput{
		Mode: ModeAir,
		Rate: 2.5,
		Surcharges: []Surcharge{
			{Type: SurchargeFuel, Percent: 10},
			{Type: SurchargeHandling, Flat: 15},
		},
		Margin: Margin{Percent: 20},
	})
	require.NoError(t, err)
	require.InDelta(t, 100.0, b.BaseRate, 0.0001)
	require.Len(t, b.Surcharges, 2)
	require.InDelta(t, 10.0, b.Surcharges[0].Amount, 0.0001)
	require.InDelta(t, 15.0, b.Surcharges[1].Amount, 0.0001)
	require.InDelta(t, 125.0, b.Subtotal, 0.0001)
	require.InDelta(t, 25.0, b.MarginAmount, 0.0001)
	require.InDelta(t, 150.0, b.Total, 0.0001)
	require.InDelta(t, b.Subtotal+b.MarginAmount, b.Total, 0.0001)
	require.False(t, b.MinChargeApplied)
}

func TestBreakdownSeaMinimumChargeFloor(t *testing.T) {
	totals, err := Calculate([]Item{
		{Length: 50, Width: 50, Height: 40, DimensionUnit: UnitCentimeter, Weight: 5, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 0.1, totals.VolumeCBM, 0.000001)

	// The floor applies after margin: 0.1 CBM * 80 = 8, +10% margin = 8.8, floored to 50.
	b, err := BuildBreakdown(totals, PriceInput{
		Mode:      ModeSea,
		Rate:      80,
		Margin:    Margin{Percent: 10},
		MinCharge: 50,
	})
	require.NoError(t, err)
	require.InDelta(t, 8.0, b.Subtotal, 0.0001)
	require.InDelta(t, 50.0, b.Total, 0.0001)
	require.True(t, b.MinChargeApplied)
}

func TestBreakdownContainerFlatRate(t *testing.T) {
	b, err := BuildBreakdown(Totals{}, PriceInput{
		Mode:     ModeSea,
		FlatRate: 1200,
		Margin:   Margin{Flat: 100},
	})
	require.NoError(t, err)
	require.InDelta(t, 1200.0, b.BaseRate, 0.0001)
	require.InDelta(t, 1300.0, b.Total, 0.0001)
}

func TestBreakdownZeroItems(t *testing.T) {
	b, err := BuildBreakdown(Totals{}, PriceInput{Mode: ModeAir, Rate: 3})
	require.NoError(t, err)
	require.Zero(t, b.BaseRate)
	require.Zero(t, b.Total)
}

func TestBreakdownUnknownMode(t *testing.T) {
	_, err := BuildBreakdown(Totals{}, PriceInput{Mode: "rail", Rate: 1})
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestPercentSurchargeCompoundsOnRunningSubtotal(t *testing.T) {
	b, err := BuildBreakdown(Totals{ChargeableWeightKg: 100}, PriceInput{
		Mode: ModeAir,
		Rate: 1,
		Surcharges: []Surcharge{
			{Type: SurchargeFuel, Percent: 10},     // 10 on 100
			{Type: SurchargeCustoms, Percent: 10},  // 11 on 110
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 10.0, b.Surcharges[0].Amount, 0.0001)
	require.InDelta(t, 11.0, b.Surcharges[1].Amount, 0.0001)
	require.InDelta(t, 121.0, b.Subtotal, 0.0001)
}
