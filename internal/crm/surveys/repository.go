package surveys

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
	Get(ctx context.Context, id int64) (*Survey, error)
	GetBySurveyNo(ctx context.Context, surveyNo string) (*Survey, error)
	List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error)
	Create(ctx context.Context, s Survey) (int64, error)
	Update(ctx context.Context, id int64, expectedRevision int64, items []SurveyItem, notes *string) error
	SetStatus(ctx context.Context, id int64, status SurveyStatus) error
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

const surveyColumns = `id, survey_no, customer_ref, items, status, notes,
	created_by, created_at, updated_at, revision`

func (r *repository) Get(ctx context.Context, id int64) (*Survey, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM project_surveys WHERE id = $1`, surveyColumns), id)
	return scanSurvey(row)
}

func (r *repository) GetBySurveyNo(ctx context.Context, surveyNo string) (*Survey, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM project_surveys WHERE survey_no = $1`, surveyColumns), surveyNo)
	return scanSurvey(row)
}

func (r *repository) List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM project_surveys "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM project_surveys %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		surveyColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

// assignItemIDs fills in identifiers for rows whose placeholder ids were
// stripped before persistence.
func assignItemIDs(items []SurveyItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
}

func (r *repository) Create(ctx context.Context, s Survey) (int64, error) {
	assignItemIDs(s.Items)
	items, err := json.Marshal(s.Items)
	if err != nil {
		return 0, fmt.Errorf("marshal survey items: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO project_surveys (survey_no, customer_ref, items, status, notes,
			created_by, created_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING id
	`, s.SurveyNo, s.CustomerRef, items, s.Status, s.Notes, s.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: survey no %s already exists", shared.ErrConflict, s.SurveyNo)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, expectedRevision int64, items []SurveyItem, notes *string) error {
	assignItemIDs(items)
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal survey items: %w", err)
	}

	query := "UPDATE project_surveys SET updated_at = NOW(), revision = revision + 1, items = $1"
	args := []interface{}{encoded}
	argPos := 2
	if notes != nil {
		query += fmt.Sprintf(", notes = $%d", argPos)
		args = append(args, *notes)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d AND revision = $%d", argPos, argPos+1)
	args = append(args, id, expectedRevision)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: survey %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status SurveyStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE project_surveys SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSurvey(row pgx.Row) (*Survey, error) {
	var s Survey
	var items []byte
	err := row.Scan(&s.ID, &s.SurveyNo, &s.CustomerRef, &items, &s.Status, &s.Notes,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt, &s.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("unmarshal survey items: %w", err)
		}
	}
	return &s, nil
}
