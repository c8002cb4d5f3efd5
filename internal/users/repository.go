package users

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows profile listings.
type ListFilters struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Profile, int, error)
	Get(ctx context.Context, id string) (Profile, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const profileColumns = `id, name, email, role, phone, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Profile, int, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM profiles WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Role != "" {
		argCount++
		frag := ` AND role = $` + strconv.Itoa(argCount)
		query += frag
		countQuery += frag
		args = append(args, filters.Role)
	}
	if filters.Search != "" {
		argCount++
		arg := `$` + strconv.Itoa(argCount)
		frag := ` AND (name ILIKE ` + arg + ` OR email ILIKE ` + arg + `)`
		query += frag
		countQuery += frag
		args = append(args, "%"+filters.Search+"%")
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

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	query := `INSERT INTO profiles (id, name, email, role, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.Email, p.Role, p.Phone).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) SetRole(ctx context.Context, id, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
