// Package freight implements the billable weight/volume and price breakdown
// calculations for sea and air shipments.
package freight

import "fmt"

// DimensionUnit enumerates supported length units.
type DimensionUnit string

const (
	UnitCentimeter DimensionUnit = "cm"
	UnitMeter      DimensionUnit = "m"
	UnitInch       DimensionUnit = "in"
)

// WeightUnit enumerates supported weight units.
type WeightUnit string

const (
	UnitKilogram WeightUnit = "kg"
	UnitPound    WeightUnit = "lb"
)

// Canonical basis is centimeters and kilograms.
var (
	dimensionFactors = map[DimensionUnit]float64{
		UnitCentimeter: 1,
		UnitMeter:      100,
		UnitInch:       2.54,
	}
	weightFactors = map[WeightUnit]float64{
		UnitKilogram: 1,
		UnitPound:    0.453592,
	}
)

// ToCentimeters converts a length in the given unit to centimeters.
func ToCentimeters(value float64, unit DimensionUnit) (float64, error) {
	factor, ok := dimensionFactors[unit]
	if !ok {
		return 0, fmt.Errorf("freight: unknown dimension unit %q", unit)
	}
	return value * factor, nil
}

// ToKilograms converts a weight in the given unit to kilograms.
func ToKilograms(value float64, unit WeightUnit) (float64, error) {
	factor, ok := weightFactors[unit]
	if !ok {
		return 0, fmt.Errorf("freight: unknown weight unit %q", unit)
	}
	return value * factor, nil
}
