package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows stock listings.
type ListFilters struct {
	CustomerID string
	Search     string
	LowOnly    bool
	Page       int
	Limit      int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]StockItem, int, error)
	Get(ctx context.Context, id int64) (StockItem, error)
	Create(ctx context.Context, item StockItem) (StockItem, error)
	Update(ctx context.Context, item StockItem) error
	Delete(ctx context.Context, id int64) error
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
	// Deduct and Restock run inside the caller's transaction so order
	// approval stays atomic.
	Deduct(ctx context.Context, tx pgx.Tx, id int64, qty int) (StockItem, error)
	Restock(ctx context.Context, tx pgx.Tx, id int64, qty int) (StockItem, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const stockColumns = `id, customer_id, product_name, sku, quantity, consumed, reorder_threshold, price_per_unit, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]StockItem, int, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM stock_items WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	clause := func(cond string, value interface{}) {
		argCount++
		frag := ` AND ` + cond + ` $` + strconv.Itoa(argCount)
		query += frag
		countQuery += frag
		args = append(args, value)
	}

	if filters.CustomerID != "" {
		clause("customer_id =", filters.CustomerID)
	}
	if filters.Search != "" {
		argCount++
		arg := `$` + strconv.Itoa(argCount)
		frag := ` AND (product_name ILIKE ` + arg + ` OR sku ILIKE ` + arg + `)`
		query += frag
		countQuery += frag
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.LowOnly {
		low := ` AND reorder_threshold > 0 AND quantity - consumed <= reorder_threshold`
		query += low
		countQuery += low
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY product_name`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (StockItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE id = $1`, id)
	item, err := scanStockItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockItem{}, shared.ErrNotFound
	}
	return item, err
}

func (r *repository) Create(ctx context.Context, item StockItem) (StockItem, error) {
	query := `INSERT INTO stock_items (customer_id, product_name, sku, quantity, consumed, reorder_threshold, price_per_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		item.CustomerID, item.ProductName, item.SKU, item.Quantity,
		item.Consumed, item.ReorderThreshold, item.PricePerUnit,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return StockItem{}, ErrDuplicateSKU
		}
		return StockItem{}, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, item StockItem) error {
	query := `UPDATE stock_items SET product_name = $1, quantity = $2, reorder_threshold = $3, price_per_unit = $4, updated_at = NOW() WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, item.ProductName, item.Quantity, item.ReorderThreshold, item.PricePerUnit, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stock_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM stock_items WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Deduct(ctx context.Context, tx pgx.Tx, id int64, qty int) (StockItem, error) {
	item, err := lockStockItem(ctx, tx, id)
	if err != nil {
		return StockItem{}, err
	}
	item, err = applyDeduction(item, qty)
	if err != nil {
		return StockItem{}, err
	}
	if err := updateCounters(ctx, tx, item); err != nil {
		return StockItem{}, err
	}
	return item, nil
}

func (r *repository) Restock(ctx context.Context, tx pgx.Tx, id int64, qty int) (StockItem, error) {
	item, err := lockStockItem(ctx, tx, id)
	if err != nil {
		return StockItem{}, err
	}
	item.Quantity += qty
	if err := updateCounters(ctx, tx, item); err != nil {
		return StockItem{}, err
	}
	return item, nil
}

func lockStockItem(ctx context.Context, tx pgx.Tx, id int64) (StockItem, error) {
	row := tx.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id)
	item, err := scanStockItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockItem{}, shared.ErrNotFound
	}
	return item, err
}

func updateCounters(ctx context.Context, tx pgx.Tx, item StockItem) error {
	_, err := tx.Exec(ctx, `UPDATE stock_items SET quantity = $1, consumed = $2, updated_at = NOW() WHERE id = $3`,
		item.Quantity, item.Consumed, item.ID)
	return err
}

func scanStockItem(row pgx.Row) (StockItem, error) {
	var item StockItem
	err := row.Scan(&item.ID, &item.CustomerID, &item.ProductName, &item.SKU,
		&item.Quantity, &item.Consumed, &item.ReorderThreshold,
		&item.PricePerUnit, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
