package rates

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows agreement listings.
type ListFilters struct {
	Origin      string
	Destination string
	RateType    *RateType
	ActiveOnly  bool
	Page        int
	Limit       int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Agreement, int, error)
	Get(ctx context.Context, id int64) (Agreement, error)
	Create(ctx context.Context, a Agreement) (Agreement, error)
	Update(ctx context.Context, id int64, a Agreement) error
	Deactivate(ctx context.Context, id int64) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	Match(ctx context.Context, origin, destination string, rateType RateType, at time.Time) (Agreement, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const agreementColumns = `id, origin, destination, rate_type, buy_price, sell_price, margin_percent, min_charge, currency, valid_from, valid_until, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Agreement, int, error) {
	query := `SELECT ` + agreementColumns + ` FROM rate_agreements WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM rate_agreements WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	clause := func(cond string, value interface{}) {
		argCount++
		frag := ` AND ` + cond + ` $` + strconv.Itoa(argCount)
		query += frag
		countQuery += frag
		args = append(args, value)
	}

	if filters.Origin != "" {
		clause("origin ILIKE", "%"+filters.Origin+"%")
	}
	if filters.Destination != "" {
		clause("destination ILIKE", "%"+filters.Destination+"%")
	}
	if filters.RateType != nil {
		clause("rate_type =", *filters.RateType)
	}
	if filters.ActiveOnly {
		query += ` AND active = TRUE`
		countQuery += ` AND active = TRUE`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY origin, destination, valid_from DESC`
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

	var agreements []Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, 0, err
		}
		agreements = append(agreements, a)
	}
	return agreements, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Agreement, error) {
	row := r.db.QueryRow(ctx, `SELECT `+agreementColumns+` FROM rate_agreements WHERE id = $1`, id)
	a, err := scanAgreement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agreement{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a Agreement) (Agreement, error) {
	query := `INSERT INTO rate_agreements (origin, destination, rate_type, buy_price, sell_price, margin_percent, min_charge, currency, valid_from, valid_until, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		a.Origin, a.Destination, a.RateType, a.BuyPrice, a.SellPrice, a.MarginPercent,
		a.MinCharge, a.Currency, a.ValidFrom, a.ValidUntil, true, now, now,
	).Scan(&a.ID)
	if err != nil {
		return Agreement{}, err
	}
	a.Active = true
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

func (r *repository) Update(ctx context.Context, id int64, a Agreement) error {
	query := `UPDATE rate_agreements SET buy_price = $1, sell_price = $2, margin_percent = $3, min_charge = $4, valid_from = $5, valid_until = $6, updated_at = $7 WHERE id = $8`
	tag, err := r.db.Exec(ctx, query, a.BuyPrice, a.SellPrice, a.MarginPercent, a.MinCharge, a.ValidFrom, a.ValidUntil, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE rate_agreements SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE rate_agreements SET active = FALSE, updated_at = NOW() WHERE active = TRUE AND valid_until < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) Match(ctx context.Context, origin, destination string, rateType RateType, at time.Time) (Agreement, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+agreementColumns+` FROM rate_agreements
		WHERE origin = $1 AND destination = $2 AND rate_type = $3
		  AND active = TRUE AND valid_from <= $4 AND valid_until >= $4
		ORDER BY valid_from DESC
		LIMIT 1`, origin, destination, rateType, at)
	a, err := scanAgreement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agreement{}, ErrNoRateAvailable
	}
	return a, err
}

func scanAgreement(row pgx.Row) (Agreement, error) {
	var a Agreement
	err := row.Scan(&a.ID, &a.Origin, &a.Destination, &a.RateType, &a.BuyPrice, &a.SellPrice,
		&a.MarginPercent, &a.MinCharge, &a.Currency, &a.ValidFrom, &a.ValidUntil, &a.Active,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}
