package quotes

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

// ListFilters narrows quote listings.
type ListFilters struct {
	Status        *Status
	CustomerEmail string
	Page          int
	Limit         int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Quote, int, error)
	Get(ctx context.Context, id int64) (Quote, error)
	Create(ctx context.Context, q Quote) (Quote, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const quoteColumns = `id, reference, customer_name, customer_email, origin, destination, rate_type, agreement_id, items, breakdown, currency, status, valid_until, created_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Quote, int, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM quotes WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	clause := func(cond string, value interface{}) {
		argCount++
		frag := ` AND ` + cond + ` $` + strconv.Itoa(argCount)
		query += frag
		countQuery += frag
		args = append(args, value)
	}

	if filters.Status != nil {
		clause("status =", *filters.Status)
	}
	if filters.CustomerEmail != "" {
		clause("customer_email =", filters.CustomerEmail)
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

	var quotes []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Quote, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, shared.ErrNotFound
	}
	return q, err
}

func (r *repository) Create(ctx context.Context, q Quote) (Quote, error) {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return Quote{}, err
	}
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return Quote{}, err
	}
	query := `INSERT INTO quotes (reference, customer_name, customer_email, origin, destination, rate_type, agreement_id, items, breakdown, currency, status, valid_until, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		q.Reference, q.CustomerName, q.CustomerEmail, q.Origin, q.Destination,
		q.RateType, q.AgreementID, items, breakdown, q.Currency, q.Status,
		q.ValidUntil, q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotes SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanQuote(row pgx.Row) (Quote, error) {
	var (
		q         Quote
		items     []byte
		breakdown []byte
		validPtr  *time.Time
	)
	err := row.Scan(&q.ID, &q.Reference, &q.CustomerName, &q.CustomerEmail,
		&q.Origin, &q.Destination, &q.RateType, &q.AgreementID, &items,
		&breakdown, &q.Currency, &q.Status, &validPtr, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Quote{}, err
	}
	if validPtr != nil {
		q.ValidUntil = *validPtr
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return Quote{}, err
	}
	if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
		return Quote{}, err
	}
	return q, nil
}
