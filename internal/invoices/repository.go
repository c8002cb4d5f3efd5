package invoices

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows invoice listings.
type ListFilters struct {
	CustomerID string
	Status     *Status
	Page       int
	Limit      int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Invoice, int, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	SetStatus(ctx context.Context, id int64, status Status, at time.Time) error
	// ListDueForOverdue returns sent or viewed invoices whose due date
	// passed. The overdue scan feeds on it.
	ListDueForOverdue(ctx context.Context, now time.Time) ([]Invoice, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const invoiceColumns = `id, number, order_id, customer_id, customer_email, subtotal, tax_percent, tax_amount, total, currency, status, due_date, sent_at, viewed_at, paid_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Invoice, int, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM invoices WHERE 1=1`
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

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, err
}

func (r *repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	query := `INSERT INTO invoices (number, order_id, customer_id, customer_email, subtotal, tax_percent, tax_amount, total, currency, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		inv.Number, inv.OrderID, inv.CustomerID, inv.CustomerEmail,
		inv.Subtotal, inv.TaxPercent, inv.TaxAmount, inv.Total, inv.Currency,
		inv.Status, inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Invoice{}, ErrOrderAlreadyInvoiced
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW()`
	switch status {
	case StatusSent:
		query += `, sent_at = $3`
	case StatusViewed:
		query += `, viewed_at = $3`
	case StatusPaid:
		query += `, paid_at = $3`
	}
	query += ` WHERE id = $2`

	var (
		tag pgconn.CommandTag
		err error
	)
	switch status {
	case StatusSent, StatusViewed, StatusPaid:
		tag, err = r.db.Exec(ctx, query, status, id, at)
	default:
		tag, err = r.db.Exec(ctx, query, status, id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListDueForOverdue(ctx context.Context, now time.Time) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status IN ($1, $2) AND due_date < $3`
	rows, err := r.db.Query(ctx, query, StatusSent, StatusViewed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.CustomerID,
		&inv.CustomerEmail, &inv.Subtotal, &inv.TaxPercent, &inv.TaxAmount,
		&inv.Total, &inv.Currency, &inv.Status, &inv.DueDate, &inv.SentAt,
		&inv.ViewedAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}
