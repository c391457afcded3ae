package opportunities

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type mockRepository struct {
	byID        map[int64]*Opportunity
	nextID      int64
	updateCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]*Opportunity), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Opportunity, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepository) GetByOpportunityNo(_ context.Context, no string) (*Opportunity, error) {
	for _, o := range m.byID {
		if o.OpportunityNo == no {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) List(_ context.Context, _ ListOpportunitiesRequest) ([]Opportunity, int, error) {
	var out []Opportunity
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(_ context.Context, o Opportunity) (int64, error) {
	o.ID = m.nextID
	o.Revision = 1
	m.nextID++
	m.byID[o.ID] = &o
	return o.ID, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	m.updateCalls++
	o, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	if o.Revision != expectedRevision {
		return fmt.Errorf("%w: opportunity %d revision %d is stale", shared.ErrConflict, id, expectedRevision)
	}
	if v, ok := updates["demands"]; ok {
		o.Demands = v.([]string)
	}
	if v, ok := updates["unit_price"]; ok {
		o.UnitPrice = v.(float64)
	}
	if v, ok := updates["probability"]; ok {
		o.Probability = v.(int)
	}
	if v, ok := updates["opportunity_value"]; ok {
		o.OpportunityValue = v.(float64)
	}
	if v, ok := updates["notes"]; ok {
		n := v.(string)
		o.Notes = &n
	}
	o.Revision++
	return nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id int64, from, to OpportunityStatus) error {
	o, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	if o.Status != from {
		return fmt.Errorf("%w: opportunity %d is no longer %s", shared.ErrConflict, id, from)
	}
	o.Status = to
	o.Revision++
	return nil
}

func (m *mockRepository) AppendCareHistory(_ context.Context, id int64, careID string) error {
	o, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.CareHistory = append(o.CareHistory, careID)
	return nil
}

type mockCustomerRepo struct {
	byID map[int64]*customers.Customer
}

func (m *mockCustomerRepo) Get(_ context.Context, id int64) (*customers.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) GetByCustomerID(_ context.Context, _ string) (*customers.Customer, error) {
	return nil, shared.ErrNotFound
}

func (m *mockCustomerRepo) List(_ context.Context, _ customers.ListCustomersRequest) ([]customers.Customer, int, error) {
	return nil, 0, nil
}

func (m *mockCustomerRepo) Create(_ context.Context, _ customers.Customer) (int64, error) {
	return 0, nil
}

func (m *mockCustomerRepo) Update(_ context.Context, _ int64, _ int64, _ map[string]interface{}) error {
	return nil
}

func (m *mockCustomerRepo) SetState(_ context.Context, _ int64, _ customers.State) error {
	return nil
}

type memCounters struct {
	seqs map[string]int64
}

func (m *memCounters) Reserve(_ context.Context, prefix, scope string, n int64) (int64, error) {
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	key := prefix + "/" + scope
	m.seqs[key] += n
	return m.seqs[key] - n + 1, nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	custRepo := &mockCustomerRepo{byID: map[int64]*customers.Customer{
		1: {ID: 1, CustomerID: "KH-NVA-0001", Name: "Nguyen Van A", State: customers.StateActive},
		2: {ID: 2, CustomerID: "KH-TTB-0001", Name: "Tran Thi B", State: customers.StateDeleted},
	}}
	svc := NewService(repo, custRepo, sequence.NewGenerator(&memCounters{}))
	svc.now = func() time.Time {
		return time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func TestCreateSequencesNumberWithinDay(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà trọn gói"},
	}, "user-1")
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển văn phòng"},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "OPP-20260115-0001", first.OpportunityNo)
	assert.Equal(t, "OPP-20260115-0002", second.OpportunityNo)
	assert.Equal(t, StatusOpen, first.Status)
}

func TestCreateComputesValueServerSide(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1,
		Demands:     []string{"Chuyển nhà trọn gói"},
		UnitPrice:   2_000_000,
		Probability: 75,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1_500_000.0, o.OpportunityValue)
}

func TestCreateRejectsDeletedCustomer(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 2, Demands: []string{"Chuyển nhà"},
	}, "user-1")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRecomputesValue(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà"}, UnitPrice: 1000, Probability: 50,
	}, "user-1")
	require.NoError(t, err)

	probability := 80
	updated, err := svc.Update(context.Background(), o.ID, UpdateOpportunityRequest{Probability: &probability})
	require.NoError(t, err)

	assert.Equal(t, 800.0, updated.OpportunityValue)
	assert.Equal(t, int64(2), updated.Revision)
}

func TestUpdateClosedRejectedBeforeWrite(t *testing.T) {
	svc, repo := newTestService()
	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà"},
	}, "user-1")
	require.NoError(t, err)
	repo.byID[o.ID].Status = StatusWon
	repo.updateCalls = 0

	price := 500.0
	_, err = svc.Update(context.Background(), o.ID, UpdateOpportunityRequest{UnitPrice: &price})
	assert.ErrorIs(t, err, shared.ErrLocked)
	assert.Zero(t, repo.updateCalls)
}

func TestUpdateStaleRevisionConflicts(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà"}, UnitPrice: 1000, Probability: 50,
	}, "user-1")
	require.NoError(t, err)

	probability := 60
	_, err = svc.Update(context.Background(), o.ID, UpdateOpportunityRequest{Probability: &probability})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), o.ID, UpdateOpportunityRequest{
		Probability: &probability,
		Revision:    o.Revision,
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

// staleStatusRepository serves reads from a fixed snapshot while writes hit
// the shared store, the interleaving of two transition requests that both
// validated against the same status.
type staleStatusRepository struct {
	*mockRepository
	snapshot Opportunity
}

func (r *staleStatusRepository) Get(_ context.Context, _ int64) (*Opportunity, error) {
	cp := r.snapshot
	return &cp, nil
}

func TestTransitionConcurrentWritersOnlyOneLands(t *testing.T) {
	svc, repo := newTestService()
	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà"},
	}, "user-1")
	require.NoError(t, err)

	rivalRepo := &staleStatusRepository{mockRepository: repo, snapshot: *repo.byID[o.ID]}
	rival := NewService(rivalRepo, &mockCustomerRepo{}, sequence.NewGenerator(&memCounters{}))

	_, err = svc.Transition(context.Background(), o.ID, StatusWon)
	require.NoError(t, err)

	// The rival still sees the opportunity as open, so its transition passes
	// validation; the guarded write must lose instead of flipping won to lost.
	_, err = rival.Transition(context.Background(), o.ID, StatusLost)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, StatusWon, repo.byID[o.ID].Status)
}

func TestTransitionTerminalStatesAbsorb(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.Create(context.Background(), CreateOpportunityRequest{
		CustomerRef: 1, Demands: []string{"Chuyển nhà"},
	}, "user-1")
	require.NoError(t, err)

	won, err := svc.Transition(context.Background(), o.ID, StatusWon)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, won.Status)

	_, err = svc.Transition(context.Background(), o.ID, StatusLost)
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Transition(context.Background(), o.ID, StatusOpen)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
