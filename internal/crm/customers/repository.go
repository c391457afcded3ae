package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infowows/trg-crm-sub000/internal/platform/db"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByCustomerID(ctx context.Context, customerID string) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error
	SetState(ctx context.Context, id int64, state State) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const customerColumns = `id, customer_id, name, short_name, potential_level,
	phone, email, address, notes, state, created_by, created_at, updated_at, revision`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns), id)
	return scanCustomer(row)
}

func (r *repository) GetByCustomerID(ctx context.Context, customerID string) (*Customer, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customers WHERE customer_id = $1`, customerColumns), customerID)
	return scanCustomer(row)
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	state := req.State
	if state == "" {
		state = StateActive
	}

	conditions := "WHERE state = $1"
	args := []interface{}{state}
	argPos := 2

	if req.Search != "" {
		conditions += fmt.Sprintf(" AND (name ILIKE $%d OR customer_id ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		customerColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (customer_id, name, short_name, potential_level,
			phone, email, address, notes, state, created_by, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), 1)
		RETURNING id
	`, c.CustomerID, c.Name, c.ShortName, c.PotentialLevel,
		c.Phone, c.Email, c.Address, c.Notes, c.State, c.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: customer id %s already exists", shared.ErrConflict, c.CustomerID)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	query := "UPDATE customers SET updated_at = NOW(), revision = revision + 1"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "potential_level", "phone", "email", "address", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d AND revision = $%d", argPos, argPos+1)
	args = append(args, id, expectedRevision)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	return nil
}

func (r *repository) SetState(ctx context.Context, id int64, state State) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET state = $1, updated_at = NOW() WHERE id = $2`, state, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CustomerID, &c.Name, &c.ShortName, &c.PotentialLevel,
		&c.Phone, &c.Email, &c.Address, &c.Notes, &c.State,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
