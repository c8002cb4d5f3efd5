package freight

import (
	"errors"
	"fmt"
	"math"
)

// VolumetricDivisor is the IATA divisor for air volumetric weight.
// Carriers bill max(actual, volumetric); the divisor is 6000, not 5000.
const VolumetricDivisor = 6000

// Mode selects the billing basis.
type Mode string

const (
	ModeSea Mode = "sea"
	ModeAir Mode = "air"
)

// Item is one line of cargo in a shipment request.
type Item struct {
	Length        float64
	Width         float64
	Height        float64
	DimensionUnit DimensionUnit
	Weight        float64
	WeightUnit    WeightUnit
	Quantity      int
}

// Validate enforces the item invariants: non-negative dimensions, quantity >= 1.
func (i Item) Validate() error {
	if i.Length < 0 || i.Width < 0 || i.Height < 0 {
		return errors.New("freight: dimensions must be non-negative")
	}
	if i.Weight < 0 {
		return errors.New("freight: weight must be non-negative")
	}
	if i.Quantity < 1 {
		return errors.New("freight: quantity must be at least 1")
	}
	return nil
}

// Totals aggregates the billable measures across all items.
type Totals struct {
	ActualWeightKg     float64 `json:"actual_weight_kg"`
	VolumetricWeightKg float64 `json:"volumetric_weight_kg"`
	ChargeableWeightKg float64 `json:"chargeable_weight_kg"`
	VolumeCBM          float64 `json:"volume_cbm"`
}

// Calculate normalizes every item to cm/kg and sums volume and weights.
// An empty item list yields zero totals, not an error.
func Calculate(items []Item) (Totals, error) {
	var t Totals
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return Totals{}, err
		}
		l, err := ToCentimeters(item.Length, item.DimensionUnit)
		if err != nil {
			return Totals{}, err
		}
		w, err := ToCentimeters(item.Width, item.DimensionUnit)
		if err != nil {
			return Totals{}, err
		}
		h, err := ToCentimeters(item.Height, item.DimensionUnit)
		if err != nil {
			return Totals{}, err
		}
		kg, err := ToKilograms(item.Weight, item.WeightUnit)
		if err != nil {
			return Totals{}, err
		}

		cubicCm := l * w * h * float64(item.Quantity)
		t.VolumeCBM += cubicCm / 1_000_000
		t.VolumetricWeightKg += cubicCm / VolumetricDivisor
		t.ActualWeightKg += kg * float64(item.Quantity)
	}
	t.ChargeableWeightKg = math.Max(t.ActualWeightKg, t.VolumetricWeightKg)
	return t, nil
}

// BillingBasis returns the quantity the rate is multiplied by: chargeable
// weight for air, CBM for sea.
func (t Totals) BillingBasis(mode Mode) (float64, error) {
	switch mode {
	case ModeAir:
		return t.ChargeableWeightKg, nil
	case ModeSea:
		return t.VolumeCBM, nil
	default:
		return 0, fmt.Errorf("freight: unknown mode %q", mode)
	}
}
