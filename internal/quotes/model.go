package quotes

import (
	"time"

	"github.com/tawreed/tawreed/internal/freight"
	"github.com/tawreed/tawreed/internal/rates"
)

// Status is the quote lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// transitions is the allowed forward edges. Accepted, rejected and expired
// are terminal.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Quote is a priced shipping offer. The breakdown is frozen at creation time
// so later rate changes never rewrite an issued price.
type Quote struct {
	ID            int64             `json:"id"`
	Reference     string            `json:"reference"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	RateType      rates.RateType    `json:"rate_type"`
	AgreementID   int64             `json:"agreement_id"`
	Items         []freight.Item    `json:"items"`
	Breakdown     freight.Breakdown `json:"breakdown"`
	Currency      string            `json:"currency"`
	Status        Status            `json:"status"`
	ValidUntil    time.Time         `json:"valid_until"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Mode derives the freight mode from the billed rate type.
func (q Quote) Mode() freight.Mode {
	if q.RateType == rates.RateAirPerKg {
		return freight.ModeAir
	}
	return freight.ModeSea
}
