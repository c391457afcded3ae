package quotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infowows/trg-crm-sub000/internal/platform/db"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Quotation, error)
	GetByQuotationNo(ctx context.Context, quotationNo string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, from, to QuotationStatus) error
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

const quotationColumns = `id, quotation_no, customer_ref, survey_ref, packages,
	tax_amount, total_amount, grand_total, status, notes,
	created_by, created_at, updated_at, revision`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM quotations WHERE id = $1`, quotationColumns), id)
	return scanQuotation(row)
}

func (r *repository) GetByQuotationNo(ctx context.Context, quotationNo string) (*Quotation, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM quotations WHERE quotation_no = $1`, quotationColumns), quotationNo)
	return scanQuotation(row)
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	conditions := "WHERE TRUE"
	var args []interface{}
	argPos := 1

	if req.CustomerRef != nil {
		conditions += fmt.Sprintf(" AND customer_ref = $%d", argPos)
		args = append(args, *req.CustomerRef)
		argPos++
	}
	if req.Status != nil {
		conditions += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM quotations %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		quotationColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

// assignLineIDs fills in identifiers for rows whose placeholder ids were
// stripped before persistence.
func assignLineIDs(lines []LineItem) {
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.NewString()
		}
		for j := range lines[i].Packages {
			if lines[i].Packages[j].ID == "" {
				lines[i].Packages[j].ID = uuid.NewString()
			}
		}
	}
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	assignLineIDs(q.Packages)
	packages, err := json.Marshal(q.Packages)
	if err != nil {
		return 0, fmt.Errorf("marshal quotation packages: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO quotations (quotation_no, customer_ref, survey_ref, packages,
			tax_amount, total_amount, grand_total, status, notes,
			created_by, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), 1)
		RETURNING id
	`, q.QuotationNo, q.CustomerRef, q.SurveyRef, packages,
		q.TaxAmount, q.TotalAmount, q.GrandTotal, q.Status, q.Notes, q.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: quotation no %s already exists", shared.ErrConflict, q.QuotationNo)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW(), revision = revision + 1"
	var args []interface{}
	argPos := 1

	if v, ok := updates["packages"]; ok {
		if lines, ok := v.([]LineItem); ok {
			assignLineIDs(lines)
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal quotation packages: %w", err)
		}
		query += fmt.Sprintf(", packages = $%d", argPos)
		args = append(args, encoded)
		argPos++
	}
	for _, col := range []string{"survey_ref", "tax_amount", "total_amount", "grand_total", "notes"} {
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
		return fmt.Errorf("%w: quotation %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	return nil
}

// UpdateStatus repeats the status the transition was validated against in the
// WHERE clause, so of two racing transitions only one lands. The revision bump
// also invalidates edits that read a pre-transition snapshot.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to QuotationStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET status = $1, updated_at = NOW(), revision = revision + 1
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quotation %d is no longer %s", shared.ErrConflict, id, from)
	}
	return nil
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var packages []byte
	err := row.Scan(&q.ID, &q.QuotationNo, &q.CustomerRef, &q.SurveyRef, &packages,
		&q.TaxAmount, &q.TotalAmount, &q.GrandTotal, &q.Status, &q.Notes,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt, &q.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(packages) > 0 {
		if err := json.Unmarshal(packages, &q.Packages); err != nil {
			return nil, fmt.Errorf("unmarshal quotation packages: %w", err)
		}
	}
	return &q, nil
}
