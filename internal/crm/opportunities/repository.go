package opportunities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infowows/trg-crm-sub000/internal/platform/db"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Opportunity, error)
	GetByOpportunityNo(ctx context.Context, opportunityNo string) (*Opportunity, error)
	List(ctx context.Context, req ListOpportunitiesRequest) ([]Opportunity, int, error)
	Create(ctx context.Context, o Opportunity) (int64, error)
	Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, from, to OpportunityStatus) error
	AppendCareHistory(ctx context.Context, id int64, careID string) error
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

const opportunityColumns = `id, opportunity_no, customer_ref, demands, unit_price,
	probability, opportunity_value, care_history, status, notes,
	created_by, created_at, updated_at, revision`

func (r *repository) Get(ctx context.Context, id int64) (*Opportunity, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM opportunities WHERE id = $1`, opportunityColumns), id)
	return scanOpportunity(row)
}

func (r *repository) GetByOpportunityNo(ctx context.Context, opportunityNo string) (*Opportunity, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM opportunities WHERE opportunity_no = $1`, opportunityColumns), opportunityNo)
	return scanOpportunity(row)
}

func (r *repository) List(ctx context.Context, req ListOpportunitiesRequest) ([]Opportunity, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM opportunities %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		opportunityColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Opportunity) (int64, error) {
	demands, err := json.Marshal(o.Demands)
	if err != nil {
		return 0, fmt.Errorf("marshal opportunity demands: %w", err)
	}
	history, err := json.Marshal(o.CareHistory)
	if err != nil {
		return 0, fmt.Errorf("marshal opportunity care history: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO opportunities (opportunity_no, customer_ref, demands, unit_price,
			probability, opportunity_value, care_history, status, notes,
			created_by, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), 1)
		RETURNING id
	`, o.OpportunityNo, o.CustomerRef, demands, o.UnitPrice,
		o.Probability, o.OpportunityValue, history, o.Status, o.Notes, o.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: opportunity no %s already exists", shared.ErrConflict, o.OpportunityNo)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	query := "UPDATE opportunities SET updated_at = NOW(), revision = revision + 1"
	var args []interface{}
	argPos := 1

	if v, ok := updates["demands"]; ok {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal opportunity demands: %w", err)
		}
		query += fmt.Sprintf(", demands = $%d", argPos)
		args = append(args, encoded)
		argPos++
	}
	for _, col := range []string{"unit_price", "probability", "opportunity_value", "notes"} {
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
		return fmt.Errorf("%w: opportunity %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	return nil
}

// UpdateStatus repeats the status the transition was validated against in the
// WHERE clause, so of two racing transitions only one lands.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to OpportunityStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE opportunities SET status = $1, updated_at = NOW(), revision = revision + 1
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: opportunity %d is no longer %s", shared.ErrConflict, id, from)
	}
	return nil
}

// AppendCareHistory pushes one care id onto the JSONB history array in a
// single statement so concurrent appends never lose entries.
func (r *repository) AppendCareHistory(ctx context.Context, id int64, careID string) error {
	encoded, err := json.Marshal(careID)
	if err != nil {
		return fmt.Errorf("marshal care id: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE opportunities
		SET care_history = COALESCE(care_history, '[]'::jsonb) || $1::jsonb, updated_at = NOW()
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

func scanOpportunity(row pgx.Row) (*Opportunity, error) {
	var o Opportunity
	var demands, history []byte
	err := row.Scan(&o.ID, &o.OpportunityNo, &o.CustomerRef, &demands, &o.UnitPrice,
		&o.Probability, &o.OpportunityValue, &history, &o.Status, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(demands) > 0 {
		if err := json.Unmarshal(demands, &o.Demands); err != nil {
			return nil, fmt.Errorf("unmarshal opportunity demands: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.CareHistory); err != nil {
			return nil, fmt.Errorf("unmarshal opportunity care history: %w", err)
		}
	}
	return &o, nil
}
