package freight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateCBM(t *testing.T) {
	totals, err := Calculate([]Item{
		{Length: 100, Width: 50, Height: 30, DimensionUnit: UnitCentimeter, Weight: 10, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 0.15, totals.VolumeCBM, 0.000001)
	require.InDelta(t, 25.0, totals.VolumetricWeightKg, 0.0001)
	require.InDelta(t, 10.0, totals.ActualWeightKg, 0.0001)
}

func TestChargeableWeightIsMax(t *testing.T) {
	// Light, bulky cargo: volumetric wins.
	totals, err := Calculate([]Item{
		{Length: 100, Width: 100, Height: 100, DimensionUnit: UnitCentimeter, Weight: 50, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 1_000_000.0/VolumetricDivisor, totals.VolumetricWeightKg, 0.0001)
	require.InDelta(t, totals.VolumetricWeightKg, totals.ChargeableWeightKg, 0.0001)

	// Dense cargo: actual weight wins.
	totals, err = Calculate([]Item{
		{Length: 30, Width: 30, Height: 30, DimensionUnit: UnitCentimeter, Weight: 200, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 200.0, totals.ChargeableWeightKg, 0.0001)
}

func TestUnitConversions(t *testing.T) {
	metric, err := Calculate([]Item{
		{Length: 1, Width: 0.5, Height: 0.3, DimensionUnit: UnitMeter, Weight: 22.0462, WeightUnit: UnitPound, Quantity: 2},
	})
	require.NoError(t, err)
	require.InDelta(t, 0.3, metric.VolumeCBM, 0.000001)
	require.InDelta(t, 20.0, metric.ActualWeightKg, 0.001)

	inches, err := Calculate([]Item{
		{Length: 10, Width: 10, Height: 10, DimensionUnit: UnitInch, Weight: 1, WeightUnit: UnitKilogram, Quantity: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 2.54*2.54*2.54*1000/1_000_000, inches.VolumeCBM, 0.000001)
}

func TestZeroItems(t *testing.T) {
	totals, err := Calculate(nil)
	require.NoError(t, err)
	require.Zero(t, totals.ActualWeightKg)
	require.Zero(t, totals.VolumeCBM)
	require.Zero(t, totals.ChargeableWeightKg)
}

func TestInvalidItems(t *testing.T) {
	_, err := Calculate([]Item{{Length: -1, DimensionUnit: UnitCentimeter, WeightUnit: UnitKilogram, Quantity: 1}})
	require.Error(t, err)

	_, err = Calculate([]Item{{Length: 1, Width: 1, Height: 1, DimensionUnit: UnitCentimeter, WeightUnit: UnitKilogram, Quantity: 0}})
	require.Error(t, err)

	_, err = Calculate([]Item{{Length: 1, Width: 1, Height: 1, DimensionUnit: "ft", WeightUnit: UnitKilogram, Quantity: 1}})
	require.Error(t, err)
}
