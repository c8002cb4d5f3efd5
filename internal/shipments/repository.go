package shipments

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawreed/tawreed/internal/shared"
)

// ListFilters narrows shipment listings.
type ListFilters struct {
	Status        *Stage
	PartnerID     *int64
	CustomerEmail string
	Page          int
	Limit         int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Shipment, int, error)
	Get(ctx context.Context, id int64) (Shipment, error)
	GetByReference(ctx context.Context, reference string) (Shipment, error)
	Create(ctx context.Context, s Shipment) (Shipment, error)
	Update(ctx context.Context, s Shipment) error
	MarkPaid(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const shipmentColumns = `id, reference, quote_id, customer_name, customer_email, origin, destination, mode, status, milestones, partner_id, driver_name, paid, amount, currency, created_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Shipment, int, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM shipments WHERE 1=1`
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
	if filters.PartnerID != nil {
		clause("partner_id =", *filters.PartnerID)
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

	var shipments []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, 0, err
		}
		shipments = append(shipments, s)
	}
	return shipments, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Shipment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	s, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shipment{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) GetByReference(ctx context.Context, reference string) (Shipment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE reference = $1`, reference)
	s, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shipment{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, s Shipment) (Shipment, error) {
	milestones, err := json.Marshal(s.Milestones)
	if err != nil {
		return Shipment{}, err
	}
	query := `INSERT INTO shipments (reference, quote_id, customer_name, customer_email, origin, destination, mode, status, milestones, partner_id, driver_name, paid, amount, currency, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		s.Reference, s.QuoteID, s.CustomerName, s.CustomerEmail, s.Origin,
		s.Destination, s.Mode, s.Status, milestones, s.PartnerID, s.DriverName,
		s.Paid, s.Amount, s.Currency, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) Update(ctx context.Context, s Shipment) error {
	milestones, err := json.Marshal(s.Milestones)
	if err != nil {
		return err
	}
	query := `UPDATE shipments SET status = $1, milestones = $2, partner_id = $3, driver_name = $4, updated_at = NOW() WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, s.Status, milestones, s.PartnerID, s.DriverName, s.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE shipments SET paid = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanShipment(row pgx.Row) (Shipment, error) {
	var (
		s          Shipment
		milestones []byte
	)
	err := row.Scan(&s.ID, &s.Reference, &s.QuoteID, &s.CustomerName,
		&s.CustomerEmail, &s.Origin, &s.Destination, &s.Mode, &s.Status,
		&milestones, &s.PartnerID, &s.DriverName, &s.Paid, &s.Amount,
		&s.Currency, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Shipment{}, err
	}
	if len(milestones) > 0 {
		if err := json.Unmarshal(milestones, &s.Milestones); err != nil {
			return Shipment{}, err
		}
	}
	return s, nil
}
