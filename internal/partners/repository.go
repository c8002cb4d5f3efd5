package partners

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows partner listings.
type ListFilters struct {
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Partner, int, error)
	Get(ctx context.Context, id int64) (Partner, error)
	Create(ctx context.Context, p Partner) (Partner, error)
	Update(ctx context.Context, p Partner) error
	Deactivate(ctx context.Context, id int64) error
	RecordPayout(ctx context.Context, p Payout) (Payout, error)
	ListPayouts(ctx context.Context, partnerID int64) ([]Payout, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const partnerColumns = `id, name, email, phone, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Partner, int, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM partners WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		arg := `$` + strconv.Itoa(argCount)
		frag := ` AND (name ILIKE ` + arg + ` OR email ILIKE ` + arg + `)`
		query += frag
		countQuery += frag
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.ActiveOnly {
		query += ` AND active = TRUE`
		countQuery += ` AND active = TRUE`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
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

	var partners []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		partners = append(partners, p)
	}
	return partners, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Partner, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
	p, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Partner) (Partner, error) {
	query := `INSERT INTO partners (name, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING id, active, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, p.Name, p.Email, p.Phone).
		Scan(&p.ID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) Update(ctx context.Context, p Partner) error {
	query := `UPDATE partners SET name = $1, email = $2, phone = $3, updated_at = NOW() WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, p.Name, p.Email, p.Phone, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE partners SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) RecordPayout(ctx context.Context, p Payout) (Payout, error) {
	query := `INSERT INTO partner_payouts (partner_id, amount, currency, reference, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, p.PartnerID, p.Amount, p.Currency, p.Reference).
		Scan(&p.ID, &p.CreatedAt)
	return p, err
}

func (r *repository) ListPayouts(ctx context.Context, partnerID int64) ([]Payout, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, partner_id, amount, currency, reference, created_at FROM partner_payouts WHERE partner_id = $1 ORDER BY created_at DESC`,
		partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.PartnerID, &p.Amount, &p.Currency, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
