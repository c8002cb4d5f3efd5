package orders

import "time"

// Status is the order workflow state.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusInProgress      Status = "in_progress"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

// transitions is the allowed forward edges. Cancel is reachable from any
// non-terminal state; delivered and cancelled are immutable.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusApproved, StatusCancelled},
	StatusApproved:        {StatusInProgress, StatusCancelled},
	StatusInProgress:      {StatusDelivered, StatusCancelled},
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

// Type separates stock-consuming orders from replenishment.
type Type string

const (
	// TypeOutbound deducts stock on approval.
	TypeOutbound Type = "outbound"
	// TypeReorder increments stock on approval instead.
	TypeReorder Type = "reorder"
)

// Line is one stock item and quantity on an order.
type Line struct {
	StockItemID int64 `json:"stock_item_id"`
	Quantity    int   `json:"quantity"`
}

// Order is a warehouse movement request. Approval is the only point where
// stock counters change.
type Order struct {
	ID         int64      `json:"id"`
	Reference  string     `json:"reference"`
	CustomerID string     `json:"customer_id"`
	Type       Type       `json:"type"`
	Lines      []Line     `json:"lines"`
	Status     Status     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedBy  string     `json:"created_by"`
	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
