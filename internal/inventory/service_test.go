package inventory

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tawreed/tawreed/internal/shared"
)

type memoryRepo struct {
	items  map[int64]StockItem
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]StockItem{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]StockItem, int, error) {
	var out []StockItem
	for _, item := range m.items {
		if filters.CustomerID != "" && item.CustomerID != filters.CustomerID {
			continue
		}
		if filters.LowOnly && !item.LowStock() {
			continue
		}
		out = append(out, item)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (StockItem, error) {
	item, ok := m.items[id]
	if !ok {
		return StockItem{}, shared.ErrNotFound
	}
	return item, nil
}

func (m *memoryRepo) Create(_ context.Context, item StockItem) (StockItem, error) {
	for _, existing := range m.items {
		if existing.CustomerID == item.CustomerID && existing.SKU == item.SKU {
			// Wrapped like the SQL layer reports it.
			return StockItem{}, fmt.Errorf("insert stock item: %w", ErrDuplicateSKU)
		}
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryRepo) Update(_ context.Context, item StockItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) DeleteByCustomer(_ context.Context, customerID string) (int64, error) {
	var n int64
	for id, item := range m.items {
		if item.CustomerID == customerID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Deduct(_ context.Context, _ pgx.Tx, id int64, qty int) (StockItem, error) {
	item, ok := m.items[id]
	if !ok {
		return StockItem{}, shared.ErrNotFound
	}
	item, err := applyDeduction(item, qty)
	if err != nil {
		return StockItem{}, err
	}
	m.items[id] = item
	return item, nil
}

func (m *memoryRepo) Restock(_ context.Context, _ pgx.Tx, id int64, qty int) (StockItem, error) {
	item, ok := m.items[id]
	if !ok {
		return StockItem{}, shared.ErrNotFound
	}
	item.Quantity += qty
	m.items[id] = item
	return item, nil
}

func workbookBytes(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportXLSXPartialSuccess(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: "cust-1", ProductName: "Existing", SKU: "SKU-1", Quantity: 1, PricePerUnit: 1,
	})
	require.NoError(t, err)

	buf := workbookBytes(t, [][]any{
		{"product_name", "sku", "quantity", "price"},
		{"Widget", "SKU-2", 10, 2.5},
		{"Dup", "SKU-1", 5, 1.0},    // duplicate for this customer
		{"Bad Qty", "SKU-3", "x", 1.0},
		{"", "SKU-4", 3, 1.0},       // missing product name
	})

	report, err := svc.ImportXLSX(ctx, "cust-1", buf)
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)
	require.Equal(t, 3, report.Failed)
	require.Len(t, report.Rows, 4)

	require.True(t, report.Rows[0].Success)
	require.False(t, report.Rows[1].Success)
	require.Contains(t, report.Rows[1].Error, "duplicate")
	require.False(t, report.Rows[2].Success)
	require.False(t, report.Rows[3].Success)
}

func TestImportXLSXAcceptsPricePerUnitColumn(t *testing.T) {
	svc := NewService(newMemoryRepo())
	buf := workbookBytes(t, [][]any{
		{"product_name", "sku", "quantity", "price_per_unit"},
		{"Widget", "SKU-9", 4, 1.25},
	})
	report, err := svc.ImportXLSX(context.Background(), "cust-1", buf)
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)
	require.Zero(t, report.Failed)
}

func TestImportXLSXMissingColumn(t *testing.T) {
	svc := NewService(newMemoryRepo())
	buf := workbookBytes(t, [][]any{
		{"product_name", "sku", "price"},
		{"Widget", "SKU-9", 1.25},
	})
	_, err := svc.ImportXLSX(context.Background(), "cust-1", buf)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quantity")
}

func TestExportCSV(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CustomerID: "cust-1", ProductName: "Widget, large", SKU: "SKU-1",
		Quantity: 10, ReorderThreshold: 2, PricePerUnit: 3.5,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, "cust-1", &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(exportHeaders, ","), lines[0])
	require.Contains(t, lines[1], `"Widget, large"`)
	require.Contains(t, lines[1], "SKU-1")
}
