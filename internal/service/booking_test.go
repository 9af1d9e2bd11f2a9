package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/gateway"
	"github.com/iFredsz/nikhu-booking/internal/repository"
)

func testCatalog() *mockCatalog {
	return &mockCatalog{
		products: map[string]*domain.Product{
			"p1": {ID: "p1", Label: "Self Photo Studio", BasePrice: 100000, MaxPeople: 4, Active: true},
		},
		addOns: map[string]*domain.AddOn{
			"a-print": {ID: "a-print", Name: "Print Package", Price: 25000, Kind: domain.AddOnFlat, Active: true},
			"a-frame": {ID: "a-frame", Name: "Extra Frame", Price: 10000, Kind: domain.AddOnPerSession, Active: true},
		},
	}
}

func testVouchers() *mockVouchers {
	return &mockVouchers{vouchers: map[string]*domain.Voucher{
		"WELCOME": {Code: "WELCOME", DiscountAmount: 50000, Active: true, UsageCount: 0, UsageLimit: 10},
		"DRAINED": {Code: "DRAINED", DiscountAmount: 50000, Active: true, UsageCount: 10, UsageLimit: 10},
	}}
}

func newTestSvc(store *memStore) (*BookingSvc, *mockGateway, *mockPublisher, *mockVouchers) {
	gw := &mockGateway{}
	pub := &mockPublisher{}
	vouchers := testVouchers()
	svc := NewBookingSvc(store, testCatalog(), vouchers, NewAvailability(store), gw, pub, 2*time.Hour)
	return svc, gw, pub, vouchers
}

func line(date string, times ...string) CreateOrderLine {
	return CreateOrderLine{
		ProductID:     "p1",
		Date:          date,
		Times:         times,
		PeopleCount:   2,
		CustomerName:  "Rani",
		CustomerPhone: "0812000111",
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	store := newMemStore()
	svc, gw, pub, _ := newTestSvc(store)

	o, err := svc.Create(context.Background(), "U123", []CreateOrderLine{line("2026-09-10", "09:00", "09:30")})
	require.NoError(t, err)

	// base 100000 × 2 people × 2 sessions
	assert.Equal(t, int64(400000), o.GrossAmount)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	assert.NotEmpty(t, o.PaymentToken)
	assert.NotEmpty(t, o.RedirectURL)
	assert.True(t, o.ExpireAt.After(time.Now()))
	assert.LessOrEqual(t, len("U123-"+o.ID), 50)
	assert.Equal(t, 1, gw.calls)
	assert.Contains(t, pub.keys(), EventOrderCreated)

	stored, err := store.ByID(context.Background(), "U123", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
}

// Owner ids come from the user repository, not from test fixtures; the
// composed gateway order id must survive them.
func TestCreateOrderWithGeneratedUserID(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	owner := repository.NewUserID()
	o, err := svc.Create(context.Background(), owner, []CreateOrderLine{line("2026-09-10", "09:00")})
	require.NoError(t, err)

	composed, err := gateway.EncodeOrderID(owner, o.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(composed), gateway.MaxOrderIDLen)

	gotOwner, gotID, err := gateway.DecodeOrderID(composed)
	require.NoError(t, err)
	assert.Equal(t, owner, gotOwner)
	assert.Equal(t, o.ID, gotID)
}

func TestCreateOrderPricesServerSide(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	l := line("2026-09-10", "09:00")
	l.AddOns = []CreateAddOn{
		{AddOnID: "a-print", Quantity: 1},
		{AddOnID: "a-frame", Quantity: 2, PerSession: map[string]int{"09:00": 2}},
	}
	l.VoucherCode = "WELCOME"

	o, err := svc.Create(context.Background(), "U123", []CreateOrderLine{l})
	require.NoError(t, err)

	// base 100000×2×1 + flat 25000×2×1 + per-session 10000×2 − 50000
	assert.Equal(t, int64(220000), o.GrossAmount)
}

func TestCreateOrderFloorsNegativeTotal(t *testing.T) {
	store := newMemStore()
	svc, gw, _, vouchers := newTestSvc(store)
	vouchers.vouchers["HUGE"] = &domain.Voucher{Code: "HUGE", DiscountAmount: 900000, Active: true, UsageLimit: 5}

	l := line("2026-09-10", "09:00")
	l.PeopleCount = 1
	l.VoucherCode = "HUGE"

	o, err := svc.Create(context.Background(), "U123", []CreateOrderLine{l})
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.GrossAmount)

	// The item lines the gateway sees sum to the charged amount.
	var itemSum int64
	for _, it := range gw.lastReq.Items {
		itemSum += it.Price * int64(it.Qty)
	}
	assert.Equal(t, gw.lastReq.GrossAmount, itemSum)
	assert.Equal(t, o.GrossAmount, gw.lastReq.GrossAmount)
}

func TestCreateOrderRejectsExhaustedVoucher(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	l := line("2026-09-10", "09:00")
	l.VoucherCode = "DRAINED"

	_, err := svc.Create(context.Background(), "U123", []CreateOrderLine{l})
	require.ErrorIs(t, err, ErrVoucherNotUsable)
}

func TestCreateOrderRejectsBreakTime(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	_, err := svc.Create(context.Background(), "U123", []CreateOrderLine{line("2026-09-10", "12:00")})
	require.ErrorIs(t, err, ErrBreakTime)
}

func TestCreateOrderRejectsOverAllocatedAddOn(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	l := line("2026-09-10", "09:00", "09:30")
	l.AddOns = []CreateAddOn{{
		AddOnID:    "a-frame",
		Quantity:   2,
		PerSession: map[string]int{"09:00": 2, "09:30": 1},
	}}

	_, err := svc.Create(context.Background(), "U123", []CreateOrderLine{l})
	require.ErrorIs(t, err, ErrOverAllocated)
}

func TestCreateOrderConflictsWithPaidSlot(t *testing.T) {
	store := newMemStore()
	store.put(paidOrder("U9", "ORD-X", "2026-09-10", "09:00"))
	svc, gw, _, _ := newTestSvc(store)

	_, err := svc.Create(context.Background(), "U123", []CreateOrderLine{line("2026-09-10", "09:00", "09:30")})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, []string{"09:00"}, conflict.Conflicts[0].Times)
	// Conflict detected before any gateway call.
	assert.Equal(t, 0, gw.calls)
}

func TestCreateOrderTokenFailureLeavesNoOrder(t *testing.T) {
	store := newMemStore()
	svc, gw, _, _ := newTestSvc(store)
	gw.err = errors.New("gateway down")

	_, err := svc.Create(context.Background(), "U123", []CreateOrderLine{line("2026-09-10", "09:00")})
	require.Error(t, err)

	orders, lerr := store.ListByOwner(context.Background(), "U123")
	require.NoError(t, lerr)
	assert.Empty(t, orders)
}

// The advisory check leaves a time-of-check/time-of-use gap: two concurrent
// submissions for the same slot can both create pending orders and both
// settle, double-booking the slot. This demonstrates the accepted race.
func TestConcurrentDoubleSubmitRace(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	var wg sync.WaitGroup
	ids := make([]string, 2)
	errs := make([]error, 2)
	owners := []string{"U1", "U2"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := svc.Create(context.Background(), owners[i], []CreateOrderLine{line("2026-09-10", "09:00")})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = o.ID
		}(i)
	}
	wg.Wait()
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
	}

	// Both passed the advisory check; both settle.
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.HandleNotification(context.Background(), owners[i]+"-"+ids[i], "settlement"))
		assert.Equal(t, domain.PaymentSuccess, store.status(owners[i], ids[i]))
	}

	// The slot-uniqueness invariant is now violated: the system narrows but
	// does not close this window.
	res, err := NewAvailability(store).Check(context.Background(), []domain.BookingDetail{
		{Date: "2026-09-10", Times: []string{"09:00"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Available)
}

func TestHandleNotificationSettlement(t *testing.T) {
	store := newMemStore()
	svc, _, pub, vouchers := newTestSvc(store)
	store.put(&domain.Order{
		ID:            "ORD-abc",
		OwnerID:       "U123",
		PaymentStatus: domain.PaymentPending,
		Details:       domain.BookingDetails{{Date: "2026-09-10", Times: []string{"09:00"}, VoucherCode: "WELCOME"}},
	})

	require.NoError(t, svc.HandleNotification(context.Background(), "U123-ORD-abc", "settlement"))
	assert.Equal(t, domain.PaymentSuccess, store.status("U123", "ORD-abc"))
	assert.Contains(t, pub.keys(), EventOrderPaid)
	assert.Equal(t, 1, vouchers.usage["WELCOME"])
}

func TestHandleNotificationFailureStatuses(t *testing.T) {
	for _, status := range []string{"cancel", "expire", "deny"} {
		t.Run(status, func(t *testing.T) {
			store := newMemStore()
			svc, _, pub, _ := newTestSvc(store)
			store.put(&domain.Order{ID: "ORD-1", OwnerID: "U1", PaymentStatus: domain.PaymentPending})

			require.NoError(t, svc.HandleNotification(context.Background(), "U1-ORD-1", status))
			assert.Equal(t, domain.PaymentFailure, store.status("U1", "ORD-1"))
			assert.Contains(t, pub.keys(), EventOrderFailed)
		})
	}
}

func TestHandleNotificationUnrecognizedStatusIgnored(t *testing.T) {
	store := newMemStore()
	svc, _, pub, _ := newTestSvc(store)
	store.put(&domain.Order{ID: "ORD-1", OwnerID: "U1", PaymentStatus: domain.PaymentPending})

	require.NoError(t, svc.HandleNotification(context.Background(), "U1-ORD-1", "refund"))
	assert.Equal(t, domain.PaymentPending, store.status("U1", "ORD-1"))
	assert.Empty(t, pub.keys())
}

func TestHandleNotificationPendingIsNoOp(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)
	store.put(&domain.Order{ID: "ORD-1", OwnerID: "U1", PaymentStatus: domain.PaymentPending})

	require.NoError(t, svc.HandleNotification(context.Background(), "U1-ORD-1", "pending"))
	assert.Equal(t, domain.PaymentPending, store.status("U1", "ORD-1"))
}

func TestHandleNotificationTerminalOrderUnchanged(t *testing.T) {
	store := newMemStore()
	svc, _, pub, _ := newTestSvc(store)
	store.put(&domain.Order{ID: "ORD-1", OwnerID: "U1", PaymentStatus: domain.PaymentFailure})

	// A late settlement for a failed order must not resurrect it.
	require.NoError(t, svc.HandleNotification(context.Background(), "U1-ORD-1", "settlement"))
	assert.Equal(t, domain.PaymentFailure, store.status("U1", "ORD-1"))
	assert.Empty(t, pub.keys())
}

func TestRecheckFlagsUnpayableOrder(t *testing.T) {
	store := newMemStore()
	svc, _, _, _ := newTestSvc(store)

	o, err := svc.Create(context.Background(), "U1", []CreateOrderLine{line("2026-09-10", "09:00")})
	require.NoError(t, err)

	res, err := svc.Recheck(context.Background(), "U1", o.ID)
	require.NoError(t, err)
	assert.True(t, res.Available)

	// Another customer settles the same slot; the second pass catches it.
	store.put(paidOrder("U2", "ORD-W", "2026-09-10", "09:00"))
	res, err = svc.Recheck(context.Background(), "U1", o.ID)
	require.NoError(t, err)
	assert.False(t, res.Available)
}
