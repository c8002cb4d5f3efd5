package partners

import "time"

// Partner is an external shipping company shipments get assigned to.
type Partner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payout is a settlement paid out to a partner for delivered loads.
type Payout struct {
	ID        int64     `json:"id"`
	PartnerID int64     `json:"partner_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
