package care

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infowows/trg-crm-sub000/internal/platform/blob"
	"github.com/infowows/trg-crm-sub000/internal/platform/db"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*CustomerCare, error)
	GetByCareID(ctx context.Context, careID string) (*CustomerCare, error)
	List(ctx context.Context, req ListCareRequest) ([]CustomerCare, int, error)
	Create(ctx context.Context, c CustomerCare) (int64, error)
	Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error
	Close(ctx context.Context, id int64, req CloseRequest) error
	AppendAttachment(ctx context.Context, id int64, obj blob.Object) error
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

const careColumns = `id, care_id, customer_ref, care_type, content,
	opportunity_ref, survey_ref, quotation_ref, status,
	care_result, reject_group, reject_reason, attachments,
	created_by, created_at, updated_at, revision`

func (r *repository) Get(ctx context.Context, id int64) (*CustomerCare, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customer_care WHERE id = $1`, careColumns), id)
	return scanCare(row)
}

func (r *repository) GetByCareID(ctx context.Context, careID string) (*CustomerCare, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM customer_care WHERE care_id = $1`, careColumns), careID)
	return scanCare(row)
}

func (r *repository) List(ctx context.Context, req ListCareRequest) ([]CustomerCare, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customer_care "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM customer_care %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		careColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []CustomerCare
	for rows.Next() {
		c, err := scanCare(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c CustomerCare) (int64, error) {
	attachments, err := json.Marshal(c.Attachments)
	if err != nil {
		return 0, fmt.Errorf("marshal care attachments: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO customer_care (care_id, customer_ref, care_type, content,
			opportunity_ref, survey_ref, quotation_ref, status,
			care_result, reject_group, reject_reason, attachments,
			created_by, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), 1)
		RETURNING id
	`, c.CareID, c.CustomerRef, c.CareType, c.Content,
		c.OpportunityRef, c.SurveyRef, c.QuotationRef, c.Status,
		c.CareResult, c.RejectGroup, c.RejectReason, attachments, c.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: care id %s already exists", shared.ErrConflict, c.CareID)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	query := "UPDATE customer_care SET updated_at = NOW(), revision = revision + 1"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"care_type", "content"} {
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
		return fmt.Errorf("%w: care record %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	return nil
}

// Close writes the terminal status together with its required fields. The
// guard on the current status lives in the service; the WHERE clause repeats
// it so a concurrent close cannot double-apply.
func (r *repository) Close(ctx context.Context, id int64, req CloseRequest) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customer_care
		SET status = $1, care_result = $2, reject_group = $3, reject_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`, req.Status, req.CareResult, req.RejectGroup, req.RejectReason, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: care record %d is not pending", shared.ErrConflict, id)
	}
	return nil
}

func (r *repository) AppendAttachment(ctx context.Context, id int64, obj blob.Object) error {
	encoded, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal attachment: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE customer_care
		SET attachments = COALESCE(attachments, '[]'::jsonb) || $1::jsonb, updated_at = NOW()
		WHERE id = $2
	`, encoded, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCare(row pgx.Row) (*CustomerCare, error) {
	var c CustomerCare
	var attachments []byte
	err := row.Scan(&c.ID, &c.CareID, &c.CustomerRef, &c.CareType, &c.Content,
		&c.OpportunityRef, &c.SurveyRef, &c.QuotationRef, &c.Status,
		&c.CareResult, &c.RejectGroup, &c.RejectReason, &attachments,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &c.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal care attachments: %w", err)
		}
	}
	return &c, nil
}
