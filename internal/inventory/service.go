package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tawreed/tawreed/internal/export"
)

// Service manages customer stock.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput adds one stock line.
type CreateInput struct {
	CustomerID       string  `json:"customer_id" validate:"required"`
	ProductName      string  `json:"product_name" validate:"required"`
	SKU              string  `json:"sku" validate:"required"`
	Quantity         int     `json:"quantity" validate:"min=0"`
	ReorderThreshold int     `json:"reorder_threshold" validate:"min=0"`
	PricePerUnit     float64 `json:"price_per_unit" validate:"min=0"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (StockItem, error) {
	return s.repo.Create(ctx, StockItem{
		CustomerID:       strings.TrimSpace(in.CustomerID),
		ProductName:      strings.TrimSpace(in.ProductName),
		SKU:              strings.ToUpper(strings.TrimSpace(in.SKU)),
		Quantity:         in.Quantity,
		ReorderThreshold: in.ReorderThreshold,
		PricePerUnit:     in.PricePerUnit,
	})
}

// UpdateInput patches mutable fields.
type UpdateInput struct {
	ProductName      *string  `json:"product_name"`
	Quantity         *int     `json:"quantity" validate:"omitempty,min=0"`
	ReorderThreshold *int     `json:"reorder_threshold" validate:"omitempty,min=0"`
	PricePerUnit     *float64 `json:"price_per_unit" validate:"omitempty,min=0"`
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (StockItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return StockItem{}, err
	}
	if in.ProductName != nil {
		item.ProductName = strings.TrimSpace(*in.ProductName)
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.ReorderThreshold != nil {
		item.ReorderThreshold = *in.ReorderThreshold
	}
	if in.PricePerUnit != nil {
		item.PricePerUnit = *in.PricePerUnit
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return StockItem{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id int64) (StockItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]StockItem, int, error) {
	return s.repo.List(ctx, filters)
}

// LowStock lists items at or under their reorder threshold.
func (s *Service) LowStock(ctx context.Context, customerID string) ([]StockItem, error) {
	items, _, err := s.repo.List(ctx, ListFilters{CustomerID: customerID, LowOnly: true})
	return items, err
}

// ImportRowResult reports the fate of one spreadsheet row.
type ImportRowResult struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ImportReport summarises a spreadsheet import.
type ImportReport struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}

// requiredColumns must all appear in the header row. Price may come in as
// either price or price_per_unit.
var requiredColumns = []string{"product_name", "sku", "quantity"}

// ImportXLSX loads stock lines from the first sheet of a workbook. Rows
// succeed or fail independently; a bad row never aborts the rest.
func (s *Service) ImportXLSX(ctx context.Context, customerID string, r io.Reader) (ImportReport, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("inventory: open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return ImportReport{}, fmt.Errorf("inventory: workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return ImportReport{}, fmt.Errorf("inventory: read sheet: %w", err)
	}
	if len(rows) == 0 {
		return ImportReport{}, fmt.Errorf("inventory: empty sheet")
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return ImportReport{}, fmt.Errorf("inventory: missing required column %q", required)
		}
	}
	priceCol, hasPrice := cols["price"]
	if !hasPrice {
		priceCol, hasPrice = cols["price_per_unit"]
	}
	if !hasPrice {
		return ImportReport{}, fmt.Errorf("inventory: missing required column price or price_per_unit")
	}

	var report ImportReport
	for i, row := range rows[1:] {
		result := ImportRowResult{Row: i + 2}

		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		in := CreateInput{
			CustomerID:  customerID,
			ProductName: cell(cols["product_name"]),
			SKU:         cell(cols["sku"]),
		}
		result.SKU = strings.ToUpper(in.SKU)

		qty, qtyErr := strconv.Atoi(cell(cols["quantity"]))
		price, priceErr := strconv.ParseFloat(cell(priceCol), 64)
		if threshold, ok := cols["reorder_threshold"]; ok {
			in.ReorderThreshold, _ = strconv.Atoi(cell(threshold))
		}

		switch {
		case in.ProductName == "" || in.SKU == "":
			result.Error = "product_name and sku are required"
		case qtyErr != nil || qty < 0:
			result.Error = "quantity must be a non-negative integer"
		case priceErr != nil || price < 0:
			result.Error = "price must be a non-negative number"
		default:
			in.Quantity = qty
			in.PricePerUnit = price
			if _, err := s.Create(ctx, in); err != nil {
				if errors.Is(err, ErrDuplicateSKU) {
					result.Error = "duplicate sku for customer"
				} else {
					result.Error = "could not save row"
				}
			} else {
				result.Success = true
			}
		}

		if result.Success {
			report.Imported++
		} else {
			report.Failed++
		}
		report.Rows = append(report.Rows, result)
	}
	return report, nil
}

var exportHeaders = []string{"product_name", "sku", "quantity", "consumed", "available", "reorder_threshold", "price_per_unit"}

// ExportCSV streams a customer's stock as CSV.
func (s *Service) ExportCSV(ctx context.Context, customerID string, w io.Writer) error {
	items, _, err := s.repo.List(ctx, ListFilters{CustomerID: customerID})
	if err != nil {
		return err
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]any{
			"product_name":      item.ProductName,
			"sku":               item.SKU,
			"quantity":          item.Quantity,
			"consumed":          item.Consumed,
			"available":         item.Available(),
			"reorder_threshold": item.ReorderThreshold,
			"price_per_unit":    item.PricePerUnit,
		})
	}
	return export.WriteCSV(w, exportHeaders, rows)
}
