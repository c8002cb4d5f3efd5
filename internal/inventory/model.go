package inventory

import (
	"errors"
	"time"
)

// StockItem is one customer-scoped inventory line. Available stock is always
// derived; quantity and consumed are the stored counters.
type StockItem struct {
	ID               int64     `json:"id"`
	CustomerID       string    `json:"customer_id"`
	ProductName      string    `json:"product_name"`
	SKU              string    `json:"sku"`
	Quantity         int       `json:"quantity"`
	Consumed         int       `json:"consumed"`
	ReorderThreshold int       `json:"reorder_threshold"`
	PricePerUnit     float64   `json:"price_per_unit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Available returns the deductable balance.
func (s StockItem) Available() int {
	return s.Quantity - s.Consumed
}

// LowStock reports whether the balance fell to the reorder threshold.
func (s StockItem) LowStock() bool {
	return s.ReorderThreshold > 0 && s.Available() <= s.ReorderThreshold
}

// ErrInsufficientStock blocks deductions beyond the available balance.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// applyDeduction consumes qty units, failing when the available balance
// cannot cover it. Quantity never changes; only consumed moves.
func applyDeduction(item StockItem, qty int) (StockItem, error) {
	if qty < 0 {
		return StockItem{}, errors.New("inventory: negative deduction")
	}
	if item.Available() < qty {
		return StockItem{}, ErrInsufficientStock
	}
	item.Consumed += qty
	return item, nil
}

// ErrDuplicateSKU rejects a second item with the same SKU for one customer.
var ErrDuplicateSKU = errors.New("inventory: duplicate sku for customer")
