package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/gateway"
)

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrVoucherNotUsable   = errors.New("voucher_not_usable")
	ErrUnknownSessionTime = errors.New("unknown_session_time")
	ErrBreakTime          = errors.New("break_time_not_bookable")
)

// ConflictError reports which slots were already taken at check time.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string { return "slot_conflict" }

// OrderStore is the owner-scoped slice of the order repository the lifecycle
// needs.
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	ByID(ctx context.Context, ownerID, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	TransitionFromPending(ctx context.Context, ownerID, id string, to domain.PaymentStatus, note string) (bool, error)
}

type Catalog interface {
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	AddOnByID(ctx context.Context, id string) (*domain.AddOn, error)
}

type VoucherStore interface {
	ByCode(ctx context.Context, code string) (*domain.Voucher, error)
	IncrementUsage(ctx context.Context, code string) error
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type CreateAddOn struct {
	AddOnID    string         `json:"addon_id"`
	Quantity   int            `json:"quantity"`
	PerSession map[string]int `json:"per_session,omitempty"`
}

type CreateOrderLine struct {
	ProductID     string        `json:"product_id"`
	Date          string        `json:"date"`
	Times         []string      `json:"times"`
	PeopleCount   int           `json:"people_count"`
	AddOns        []CreateAddOn `json:"addons,omitempty"`
	VoucherCode   string        `json:"voucher_code,omitempty"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
}

type BookingSvc struct {
	orders     OrderStore
	catalog    Catalog
	vouchers   VoucherStore
	avail      *Availability
	gw         gateway.TokenCreator
	pub        Publisher
	pendingTTL time.Duration
	now        func() time.Time
}

func NewBookingSvc(orders OrderStore, catalog Catalog, vouchers VoucherStore, avail *Availability, gw gateway.TokenCreator, pub Publisher, pendingTTL time.Duration) *BookingSvc {
	return &BookingSvc{
		orders:     orders,
		catalog:    catalog,
		vouchers:   vouchers,
		avail:      avail,
		gw:         gw,
		pub:        pub,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// Create runs the whole reservation attempt: validate, price server-side,
// conflict-check against the store, acquire a payment token and only then
// persist the order as pending. The conflict check is advisory; a concurrent
// creator can still slip through between check and persist.
func (s *BookingSvc) Create(ctx context.Context, ownerID string, lines []CreateOrderLine) (*domain.Order, error) {
	if ownerID == "" || len(lines) == 0 {
		return nil, ErrInvalidRequest
	}

	details := make(domain.BookingDetails, 0, len(lines))
	items := make([]gateway.ItemLine, 0, len(lines))
	var gross int64
	var customerName, customerPhone string

	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
		product, err := s.catalog.ProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, err)
		}

		selections := make([]AddOnSelection, 0, len(line.AddOns))
		addOnLines := make([]domain.AddOnLine, 0, len(line.AddOns))
		for _, a := range line.AddOns {
			ao, err := s.catalog.AddOnByID(ctx, a.AddOnID)
			if err != nil {
				return nil, fmt.Errorf("addon %s: %w", a.AddOnID, err)
			}
			sel := AddOnSelection{Price: ao.Price, Kind: ao.Kind, Quantity: a.Quantity}
			if ao.Kind == domain.AddOnPerSession {
				alloc := map[string]int{}
				for t, q := range a.PerSession {
					if err := AllocateSession(alloc, t, q, a.Quantity); err != nil {
						return nil, err
					}
				}
				sel.PerSession = alloc
			}
			selections = append(selections, sel)
			addOnLines = append(addOnLines, domain.AddOnLine{
				AddOnID:    ao.ID,
				Name:       ao.Name,
				Price:      ao.Price,
				Kind:       ao.Kind,
				Quantity:   a.Quantity,
				PerSession: sel.PerSession,
			})
		}

		var discount int64
		if line.VoucherCode != "" {
			v, err := s.vouchers.ByCode(ctx, line.VoucherCode)
			if err != nil {
				return nil, fmt.Errorf("voucher %s: %w", line.VoucherCode, err)
			}
			if !v.Usable() {
				return nil, ErrVoucherNotUsable
			}
			discount = v.DiscountAmount
		}

		// The client never supplies a total; it is recomputed here from
		// catalog prices. A discount exceeding the line is floored here, so
		// the item lines sent to the gateway always sum to the charged amount.
		lineTotal := ComputeTotal(product.BasePrice, line.PeopleCount, len(line.Times), selections, discount)
		if lineTotal < 0 {
			lineTotal = 0
		}
		gross += lineTotal

		details = append(details, domain.BookingDetail{
			ProductID:     product.ID,
			ProductLabel:  product.Label,
			Date:          line.Date,
			Times:         line.Times,
			PeopleCount:   line.PeopleCount,
			AddOns:        addOnLines,
			VoucherCode:   line.VoucherCode,
			CustomerName:  line.CustomerName,
			CustomerPhone: line.CustomerPhone,
		})
		items = append(items, gateway.ItemLine{
			ID:    product.ID,
			Name:  product.Label,
			Price: lineTotal,
			Qty:   1,
		})
		customerName, customerPhone = line.CustomerName, line.CustomerPhone
	}

	check, err := s.avail.Check(ctx, details)
	if err != nil {
		return nil, fmt.Errorf("availability check: %w", err)
	}
	if !check.Available {
		return nil, &ConflictError{Conflicts: check.Conflicts}
	}

	now := s.now().UTC()
	id := gateway.NewOrderID(now)
	composed, err := gateway.EncodeOrderID(ownerID, id)
	if err != nil {
		return nil, err
	}

	// Token first: if the gateway refuses, no order record exists at all.
	token, err := s.gw.CreateToken(ctx, gateway.TokenRequest{
		OrderID:       composed,
		GrossAmount:   gross,
		Items:         items,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
	})
	if err != nil {
		return nil, fmt.Errorf("payment token: %w", err)
	}

	order := &domain.Order{
		ID:            id,
		OwnerID:       ownerID,
		PaymentStatus: domain.PaymentPending,
		GrossAmount:   gross,
		Details:       details,
		PaymentToken:  token.Token,
		RedirectURL:   token.RedirectURL,
		ExpireAt:      now.Add(s.pendingTTL),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// The record may have landed half-written; leave an unambiguous
		// failure mark instead of deleting anything.
		if _, terr := s.orders.TransitionFromPending(ctx, ownerID, id, domain.PaymentFailure, "create failed: "+err.Error()); terr != nil {
			log.Printf("[booking] mark failure after create error: %v", terr)
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if perr := s.pub.PublishJSON(ctx, EventOrderCreated, orderEvent(order, string(domain.PaymentPending))); perr != nil {
		log.Printf("[booking] publish %s: %v", EventOrderCreated, perr)
	}
	return order, nil
}

func (s *BookingSvc) Get(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	return s.orders.ByID(ctx, ownerID, id)
}

func (s *BookingSvc) List(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// Recheck is the post-creation second pass: it re-runs the conflict check
// over a pending order's own slots so clients know whether the payment action
// is still worth showing.
func (s *BookingSvc) Recheck(ctx context.Context, ownerID, id string) (*CheckResult, error) {
	o, err := s.orders.ByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != domain.PaymentPending || o.ConflictNoted {
		return &CheckResult{Available: false, Conflicts: []Conflict{}}, nil
	}
	return s.avail.Check(ctx, o.Details)
}

// mapTransactionStatus translates a gateway settlement status into an order
// transition. The bool is false for statuses that must be ignored.
func mapTransactionStatus(s string) (domain.PaymentStatus, bool) {
	switch s {
	case "settlement":
		return domain.PaymentSuccess, true
	case "pending":
		return domain.PaymentPending, true
	case "cancel", "expire", "deny":
		return domain.PaymentFailure, true
	default:
		return "", false
	}
}

// HandleNotification applies one webhook callback. Unrecognized statuses are
// logged and ignored; a notification for an already-resolved order is a
// no-op, which makes gateway retries harmless.
func (s *BookingSvc) HandleNotification(ctx context.Context, composedID, transactionStatus string) error {
	ownerID, id, err := gateway.DecodeOrderID(composedID)
	if err != nil {
		return err
	}
	status, ok := mapTransactionStatus(transactionStatus)
	if !ok {
		log.Printf("[booking] ignore unrecognized transaction status %q for %s", transactionStatus, composedID)
		return nil
	}
	if status == domain.PaymentPending {
		return nil
	}

	changed, err := s.orders.TransitionFromPending(ctx, ownerID, id, status, "")
	if err != nil {
		return fmt.Errorf("transition %s/%s: %w", ownerID, id, err)
	}
	if !changed {
		return nil
	}

	o, err := s.orders.ByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	key := EventOrderFailed
	if status == domain.PaymentSuccess {
		key = EventOrderPaid
		for _, d := range o.Details {
			if d.VoucherCode == "" {
				continue
			}
			if verr := s.vouchers.IncrementUsage(ctx, d.VoucherCode); verr != nil {
				log.Printf("[booking] voucher %s usage increment: %v", d.VoucherCode, verr)
			}
		}
	}
	if perr := s.pub.PublishJSON(ctx, key, orderEvent(o, string(status))); perr != nil {
		log.Printf("[booking] publish %s: %v", key, perr)
	}
	return nil
}

func orderEvent(o *domain.Order, status string) OrderEvent {
	slots := make([]SlotRef, 0, len(o.Details))
	for _, d := range o.Details {
		slots = append(slots, SlotRef{Date: d.Date, Times: d.Times})
	}
	return OrderEvent{OwnerID: o.OwnerID, OrderID: o.ID, Status: status, Slots: slots}
}

func validateLine(line CreateOrderLine) error {
	if line.ProductID == "" || line.CustomerName == "" || line.CustomerPhone == "" {
		return ErrInvalidRequest
	}
	if line.PeopleCount < 1 || len(line.Times) == 0 {
		return ErrInvalidRequest
	}
	if _, err := time.Parse("2006-01-02", line.Date); err != nil {
		return ErrInvalidRequest
	}
	for _, t := range line.Times {
		if !domain.IsSessionTime(t) {
			return ErrUnknownSessionTime
		}
		if domain.IsBreakTime(t) {
			return ErrBreakTime
		}
	}
	return nil
}
