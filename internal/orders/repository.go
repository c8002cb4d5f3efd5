package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows order listings.
type ListFilters struct {
	CustomerID string
	Status     *Status
	Type       *Type
	Page       int
	Limit      int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Order, int, error)
	Get(ctx context.Context, id int64) (Order, error)
	Create(ctx context.Context, o Order) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// ApproveTx stamps approval inside the caller's transaction so it
	// commits or rolls back together with the stock movements.
	ApproveTx(ctx context.Context, tx pgx.Tx, id int64, approvedBy string, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, reference, customer_id, order_type, lines, status, notes, created_by, approved_by, approved_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM orders WHERE 1=1`
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
	if filters.Status != nil {
		clause("status =", *filters.Status)
	}
	if filters.Type != nil {
		clause("order_type =", *filters.Type)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC`
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

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.ErrNotFound
	}
	return o, err
}

func (r *repository) Create(ctx context.Context, o Order) (Order, error) {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return Order{}, err
	}
	query := `INSERT INTO orders (reference, customer_id, order_type, lines, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		o.Reference, o.CustomerID, o.Type, lines, o.Status, o.Notes, o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ApproveTx(ctx context.Context, tx pgx.Tx, id int64, approvedBy string, at time.Time) error {
	query := `UPDATE orders SET status = $1, approved_by = $2, approved_at = $3, updated_at = NOW() WHERE id = $4 AND status = $5`
	tag, err := tx.Exec(ctx, query, StatusApproved, approvedBy, at, id, StatusPendingApproval)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrConflict
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o     Order
		lines []byte
	)
	err := row.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.Type, &lines,
		&o.Status, &o.Notes, &o.CreatedBy, &o.ApprovedBy, &o.ApprovedAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return Order{}, err
	}
	return o, nil
}
