package controller

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/model"
)

var errStoreDown = errors.New("disk I/O error")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockOrderRepo keeps orders in memory. Setting fail makes every call
// return errStoreDown.
type mockOrderRepo struct {
	mu      sync.Mutex
	orders  map[int64]model.Order
	nextID  int64
	fail    bool
	creates int

	// onList runs inside ListOrders before it answers.
	onList func()
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]model.Order)}
}

func (m *mockOrderRepo) setFail(v bool) {
	m.mu.Lock()
	m.fail = v
	m.mu.Unlock()
}

func (m *mockOrderRepo) ListOrders(_ context.Context) ([]model.Order, error) {
	if m.onList != nil {
		m.onList()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	out := make([]model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, apperror.NotFound("order", id)
	}
	return &o, nil
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, supply, quantity, priority string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	m.creates++
	m.nextID++
	o := model.Order{
		ID:          m.nextID,
		Supply:      supply,
		Quantity:    quantity,
		Status:      model.StatusPending,
		CreatedDate: "01/01/2025",
		Priority:    priority,
	}
	m.orders[o.ID] = o
	return &o, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	o, ok := m.orders[id]
	if !ok {
		return apperror.NotFound("order", id)
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *mockOrderRepo) DeleteOrder(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	if _, ok := m.orders[id]; !ok {
		return apperror.NotFound("order", id)
	}
	delete(m.orders, id)
	return nil
}

type mockProfileRepo struct {
	mu      sync.Mutex
	profile model.UserProfile
	failGet bool
	failPut bool
	updates int

	// gate, when non-nil, holds GetProfile until it is closed.
	gate chan struct{}
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profile: model.DefaultProfile()}
}

func (m *mockProfileRepo) GetProfile(_ context.Context) (model.UserProfile, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return model.UserProfile{}, errStoreDown
	}
	return m.profile, nil
}

func (m *mockProfileRepo) UpdateProfile(_ context.Context, p model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errStoreDown
	}
	m.updates++
	m.profile = p
	return nil
}

func (m *mockProfileRepo) stored() model.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

func (m *mockProfileRepo) updatesSoFar() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}
