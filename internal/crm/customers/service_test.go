package customers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type memCounters struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (m *memCounters) Reserve(ctx context.Context, prefix, scope string, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	key := prefix + "/" + scope
	m.seqs[key] += n
	return m.seqs[key] - n + 1, nil
}

type mockRepository struct {
	customers map[int64]*Customer
	byCode    map[string]*Customer
	nextID    int64

	updateCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customers: make(map[int64]*Customer),
		byCode:    make(map[string]*Customer),
		nextID:    1,
	}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) GetByCustomerID(ctx context.Context, customerID string) (*Customer, error) {
	c, ok := m.byCode[customerID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	state := req.State
	if state == "" {
		state = StateActive
	}
	var out []Customer
	for _, c := range m.customers {
		if c.State == state {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, c Customer) (int64, error) {
	if _, exists := m.byCode[c.CustomerID]; exists {
		return 0, fmt.Errorf("%w: customer id %s already exists", shared.ErrConflict, c.CustomerID)
	}
	c.ID = m.nextID
	c.Revision = 1
	m.nextID++
	stored := c
	m.customers[stored.ID] = &stored
	m.byCode[stored.CustomerID] = &stored
	return stored.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, expectedRevision int64, updates map[string]interface{}) error {
	m.updateCalls++
	c, ok := m.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	if c.Revision != expectedRevision {
		return fmt.Errorf("%w: stale revision", shared.ErrConflict)
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["potential_level"]; ok {
		c.PotentialLevel = v.(int)
	}
	c.Revision++
	return nil
}

func (m *mockRepository) SetState(ctx context.Context, id int64, state State) error {
	c, ok := m.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.State = state
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, sequence.NewGenerator(&memCounters{})), repo
}

func TestCreateDerivesShortNameAndID(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Nguyen Van A"}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "NVA", c.ShortName)
	assert.Equal(t, "KH-NVA-0001", c.CustomerID)
	assert.Equal(t, StateActive, c.State)
	assert.Equal(t, "u1", c.CreatedBy)
}

func TestCreateUsesSuppliedShortName(t *testing.T) {
	svc, _ := newTestService()

	c, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Nguyen Van A", ShortName: "acme"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ACME", c.ShortName)
	assert.Equal(t, "KH-ACME-0001", c.CustomerID)
}

func TestCreateSequencesWithinScope(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateCustomerRequest{Name: "Nguyen Van A"}, "u1")
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateCustomerRequest{Name: "Ngo Viet Anh"}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "KH-NVA-0001", first.CustomerID)
	assert.Equal(t, "KH-NVA-0002", second.CustomerID)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "  "}, "u1")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRetriesOnConflict(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, sequence.NewGenerator(&memCounters{}))
	ctx := context.Background()

	// Legacy row occupies the first sequence value for the scope.
	repo.byCode["KH-NVA-0001"] = &Customer{CustomerID: "KH-NVA-0001"}

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Nguyen Van A"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "KH-NVA-0002", c.CustomerID)
}

func TestUpdateChecksRevision(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Nguyen Van A"}, "u1")
	require.NoError(t, err)

	name := "Nguyen Van B"
	_, err = svc.Update(ctx, c.ID, UpdateCustomerRequest{Name: &name, Revision: c.Revision + 5})
	assert.ErrorIs(t, err, shared.ErrConflict)

	updated, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Name: &name, Revision: c.Revision})
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van B", updated.Name)
	// The id is assigned once and never regenerated.
	assert.Equal(t, c.CustomerID, updated.CustomerID)
}

func TestDeleteIsSoft(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Nguyen Van A"}, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, c.ID))

	// Row still exists but is excluded from the default listing.
	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDeleted, stored.State)

	items, _, err := svc.List(ctx, ListCustomersRequest{})
	require.NoError(t, err)
	assert.Empty(t, items)

	deleted, _, err := svc.List(ctx, ListCustomersRequest{State: StateDeleted})
	require.NoError(t, err)
	assert.Len(t, deleted, 1)

	// Updating a deleted customer is rejected before any write.
	name := "X"
	before := repo.updateCalls
	_, err = svc.Update(ctx, c.ID, UpdateCustomerRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, before, repo.updateCalls)
}
