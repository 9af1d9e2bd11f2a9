package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/gateway"
	"github.com/iFredsz/nikhu-booking/internal/repository"
)

// memStore is an in-memory stand-in for the order repository. It implements
// OrderStore, OrderScanner and SweepStore.
type memStore struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	createErr error
	scanErr   error
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*domain.Order{}}
}

func storeKey(ownerID, id string) string { return ownerID + "/" + id }

func (m *memStore) put(o *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[storeKey(o.OwnerID, o.ID)] = &cp
}

func (m *memStore) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	m.orders[storeKey(o.OwnerID, o.ID)] = &cp
	return nil
}

func (m *memStore) ByID(_ context.Context, ownerID, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[storeKey(ownerID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) TransitionFromPending(_ context.Context, ownerID, id string, to domain.PaymentStatus, note string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[storeKey(ownerID, id)]
	if !ok || o.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = to
	if note != "" {
		o.Note = note
	}
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *memStore) DetailsByStatus(_ context.Context, status domain.PaymentStatus) ([]repository.OwnedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []repository.OwnedOrder
	for _, o := range m.orders {
		if o.PaymentStatus == status {
			out = append(out, repository.OwnedOrder{OwnerID: o.OwnerID, OrderID: o.ID, Details: o.Details})
		}
	}
	return out, nil
}

func (m *memStore) PendingDueBefore(_ context.Context, t time.Time) ([]struct{ OwnerID, ID string }, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []struct{ OwnerID, ID string }
	for _, o := range m.orders {
		if o.PaymentStatus == domain.PaymentPending && o.ExpireAt.Before(t) {
			out = append(out, struct{ OwnerID, ID string }{o.OwnerID, o.ID})
		}
	}
	return out, nil
}

func (m *memStore) status(ownerID, id string) domain.PaymentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[storeKey(ownerID, id)]
	if !ok {
		return ""
	}
	return o.PaymentStatus
}

type mockCatalog struct {
	products map[string]*domain.Product
	addOns   map[string]*domain.AddOn
}

func (m *mockCatalog) ProductByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return p, nil
}

func (m *mockCatalog) AddOnByID(_ context.Context, id string) (*domain.AddOn, error) {
	a, ok := m.addOns[id]
	if !ok {
		return nil, errors.New("addon not found")
	}
	return a, nil
}

type mockVouchers struct {
	mu       sync.Mutex
	vouchers map[string]*domain.Voucher
	usage    map[string]int
}

func (m *mockVouchers) ByCode(_ context.Context, code string) (*domain.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[code]
	if !ok {
		return nil, repository.ErrVoucherNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *mockVouchers) IncrementUsage(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usage == nil {
		m.usage = map[string]int{}
	}
	m.usage[code]++
	return nil
}

type mockGateway struct {
	mu      sync.Mutex
	err     error
	calls   int
	lastReq gateway.TokenRequest
}

func (m *mockGateway) CreateToken(_ context.Context, req gateway.TokenRequest) (*gateway.TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &gateway.TokenResponse{Token: "tok-" + req.OrderID, RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	key     string
	payload any
}

func (m *mockPublisher) PublishJSON(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{key: key, payload: v})
	return nil
}

func (m *mockPublisher) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.key)
	}
	return out
}
