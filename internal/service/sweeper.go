package service

import (
	"context"
	"log"
	"time"

	"github.com/iFredsz/nikhu-booking/internal/domain"
)

// SweepStore is the slice of the order repository the sweeper needs.
type SweepStore interface {
	PendingDueBefore(ctx context.Context, t time.Time) ([]struct{ OwnerID, ID string }, error)
	ByID(ctx context.Context, ownerID, id string) (*domain.Order, error)
	TransitionFromPending(ctx context.Context, ownerID, id string, to domain.PaymentStatus, note string) (bool, error)
}

// Sweeper expires stale pending orders. It is stateless between runs and
// idempotent: already-expired orders are simply not pending anymore.
type Sweeper struct {
	orders SweepStore
	pub    Publisher
	now    func() time.Time
}

func NewSweeper(orders SweepStore, pub Publisher) *Sweeper {
	return &Sweeper{orders: orders, pub: pub, now: time.Now}
}

// Sweep transitions every pending order past its expiry to expired and
// returns how many it moved. Each order is handled independently; one
// failing update is logged and does not block the rest.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	due, err := s.orders.PendingDueBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	count := 0
	for _, key := range due {
		changed, err := s.orders.TransitionFromPending(ctx, key.OwnerID, key.ID, domain.PaymentExpired, "expired by sweeper")
		if err != nil {
			log.Printf("[sweeper] expire %s/%s: %v", key.OwnerID, key.ID, err)
			continue
		}
		if !changed {
			continue
		}
		count++
		if o, err := s.orders.ByID(ctx, key.OwnerID, key.ID); err == nil {
			if perr := s.pub.PublishJSON(ctx, EventOrderExpired, orderEvent(o, string(domain.PaymentExpired))); perr != nil {
				log.Printf("[sweeper] publish %s: %v", EventOrderExpired, perr)
			}
		}
	}
	return count, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("[sweeper] sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[sweeper] expired %d orders", n)
			}
		}
	}
}
