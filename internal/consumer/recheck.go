// Package consumer runs the post-payment second pass: when an order settles,
// every still-pending order wanting one of the same slots gets flagged so its
// owner stops being offered the payment action.
package consumer

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iFredsz/nikhu-booking/internal/cache"
	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/repository"
	"github.com/iFredsz/nikhu-booking/internal/service"
	"github.com/iFredsz/nikhu-booking/pkg/mq"
)

type OrderView interface {
	DetailsByStatus(ctx context.Context, status domain.PaymentStatus) ([]repository.OwnedOrder, error)
	FlagConflict(ctx context.Context, ownerID, id string) error
}

type RecheckConsumer struct {
	orders OrderView
	cons   *mq.Consumer
	pub    service.Publisher
	cache  cache.CalendarCache
}

func NewRecheckConsumer(orders OrderView, cons *mq.Consumer, pub service.Publisher, cc cache.CalendarCache) *RecheckConsumer {
	return &RecheckConsumer{orders: orders, cons: cons, pub: pub, cache: cc}
}

func (rc *RecheckConsumer) Run(ctx context.Context) error {
	msgs, err := rc.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			rc.handle(ctx, d)
		}
	}()
	return nil
}

func (rc *RecheckConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var evt service.OrderEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Printf("[recheck] unmarshal %s: %v", d.RoutingKey, err)
		_ = d.Nack(false, false)
		return
	}
	switch d.RoutingKey {
	case service.EventOrderPaid:
		rc.invalidateMonths(ctx, evt.Slots)
		if err := rc.flagOverlapping(ctx, evt); err != nil {
			log.Printf("[recheck] flag overlapping for %s/%s: %v", evt.OwnerID, evt.OrderID, err)
			// One retry: a redelivered message failing again is dropped so it
			// cannot spin the consumer.
			_ = d.Nack(false, !d.Redelivered)
			return
		}
		_ = d.Ack(false)
	case service.EventOrderExpired, service.EventOrderFailed:
		// Only paid orders occupy slots, so the calendar is unchanged;
		// nothing to re-check either.
		_ = d.Ack(false)
	default:
		_ = d.Ack(false)
	}
}

func (rc *RecheckConsumer) invalidateMonths(ctx context.Context, slots []service.SlotRef) {
	seen := map[string]struct{}{}
	for _, s := range slots {
		if len(s.Date) < 7 {
			continue
		}
		month := s.Date[:7]
		if _, ok := seen[month]; ok {
			continue
		}
		seen[month] = struct{}{}
		if err := rc.cache.DeleteMonth(ctx, month); err != nil {
			log.Printf("[recheck] invalidate month %s: %v", month, err)
		}
	}
}

func (rc *RecheckConsumer) flagOverlapping(ctx context.Context, evt service.OrderEvent) error {
	taken := map[string]map[string]struct{}{}
	for _, s := range evt.Slots {
		set, ok := taken[s.Date]
		if !ok {
			set = map[string]struct{}{}
			taken[s.Date] = set
		}
		for _, t := range s.Times {
			set[t] = struct{}{}
		}
	}

	pending, err := rc.orders.DetailsByStatus(ctx, domain.PaymentPending)
	if err != nil {
		return err
	}
	for _, oo := range pending {
		if oo.OwnerID == evt.OwnerID && oo.OrderID == evt.OrderID {
			continue
		}
		if !overlaps(oo.Details, taken) {
			continue
		}
		if err := rc.orders.FlagConflict(ctx, oo.OwnerID, oo.OrderID); err != nil {
			log.Printf("[recheck] flag %s/%s: %v", oo.OwnerID, oo.OrderID, err)
			continue
		}
		conflicted := service.OrderEvent{OwnerID: oo.OwnerID, OrderID: oo.OrderID, Status: "conflicted"}
		if perr := rc.pub.PublishJSON(ctx, service.EventOrderConflicted, conflicted); perr != nil {
			log.Printf("[recheck] publish %s: %v", service.EventOrderConflicted, perr)
		}
	}
	return nil
}

func overlaps(details domain.BookingDetails, taken map[string]map[string]struct{}) bool {
	for _, d := range details {
		set, ok := taken[d.Date]
		if !ok {
			continue
		}
		for _, t := range d.Times {
			if _, hit := set[t]; hit {
				return true
			}
		}
	}
	return false
}
