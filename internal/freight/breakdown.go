package freight

import "errors"

// SurchargeType enumerates the itemized add-on fees.
type SurchargeType string

const (
	SurchargeFuel          SurchargeType = "fuel"
	SurchargeHandling      SurchargeType = "handling"
	SurchargeCustoms       SurchargeType = "customs"
	SurchargeInsurance     SurchargeType = "insurance"
	SurchargeQC            SurchargeType = "qc"
	SurchargeStorage       SurchargeType = "storage"
	SurchargeDemurrage     SurchargeType = "demurrage"
	SurchargeDocumentation SurchargeType = "documentation"
	SurchargeOther         SurchargeType = "other"
)

// Surcharge is either a flat amount or a percentage of the running subtotal.
type Surcharge struct {
	Type    SurchargeType `json:"type"`
	Flat    float64       `json:"flat,omitempty"`
	Percent float64       `json:"percent,omitempty"`
}

// Margin is the seller markup: percentage of the subtotal or a flat amount.
type Margin struct {
	Percent float64 `json:"percent,omitempty"`
	Flat    float64 `json:"flat,omitempty"`
}

// SurchargeLine is one resolved surcharge in the breakdown.
type SurchargeLine struct {
	Type   SurchargeType `json:"type"`
	Amount float64       `json:"amount"`
}

// Breakdown is the full price composition of a quote.
// Invariants: Subtotal = BaseRate + sum(surcharges); Total >= Subtotal + MarginAmount
// only when the minimum-charge floor lifted it.
type Breakdown struct {
	BaseRate         float64         `json:"base_rate"`
	Surcharges       []SurchargeLine `json:"surcharges"`
	Subtotal         float64         `json:"subtotal"`
	MarginAmount     float64         `json:"margin_amount"`
	Total            float64         `json:"total"`
	MinChargeApplied bool            `json:"min_charge_applied"`
	Calculations     Totals          `json:"calculations"`
}

// PriceInput drives BuildBreakdown.
type PriceInput struct {
	Mode       Mode
	Rate       float64 // per-kg (air) or per-CBM (sea)
	FlatRate   float64 // container shipments bill flat; takes precedence when > 0
	Surcharges []Surcharge
	Margin     Margin
	MinCharge  float64 // 0 means no floor
}

// ErrUnknownMode is returned for modes outside sea/air.
var ErrUnknownMode = errors.New("freight: unknown shipping mode")

// BuildBreakdown composes base price, surcharges, margin and the minimum
// charge floor. The floor applies after margin.
func BuildBreakdown(totals Totals, in PriceInput) (Breakdown, error) {
	var base float64
	if in.FlatRate > 0 {
		base = in.FlatRate
	} else {
		basis, err := totals.BillingBasis(in.Mode)
		if err != nil {
			return Breakdown{}, ErrUnknownMode
		}
		base = in.Rate * basis
	}

	b := Breakdown{
		BaseRate:     base,
		Subtotal:     base,
		Calculations: totals,
	}
	for _, s := range in.Surcharges {
		amount := s.Flat
		if s.Percent != 0 {
			amount += b.Subtotal * s.Percent / 100
		}
		b.Surcharges = append(b.Surcharges, SurchargeLine{Type: s.Type, Amount: amount})
		b.Subtotal += amount
	}

	b.MarginAmount = in.Margin.Flat
	if in.Margin.Percent != 0 {
		b.MarginAmount += b.Subtotal * in.Margin.Percent / 100
	}
	b.Total = b.Subtotal + b.MarginAmount

	if in.MinCharge > 0 && b.Total < in.MinCharge {
		b.Total = in.MinCharge
		b.MinChargeApplied = true
	}
	return b, nil
}
