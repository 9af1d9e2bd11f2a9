package service

import (
	"context"
	"sort"
	"strings"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/repository"
)

type Conflict struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
	Label string   `json:"label"`
}

type CheckResult struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}

// OrderScanner is the cross-owner aggregate view the availability side needs
// from the order store.
type OrderScanner interface {
	DetailsByStatus(ctx context.Context, status domain.PaymentStatus) ([]repository.OwnedOrder, error)
}

// Availability derives the taken-slot set from paid orders and answers
// conflict checks against it. The check is read-only and advisory: it takes
// no lock, so two concurrent callers can both pass for the same slot.
type Availability struct {
	orders OrderScanner
}

func NewAvailability(orders OrderScanner) *Availability {
	return &Availability{orders: orders}
}

// Check scans every paid order in the store at this moment and reports any
// slot overlap with the candidate requests. A request or stored line missing
// its date or times is skipped (defensive, not a business rule). If the
// aggregate scan itself fails, the error propagates: callers must treat the
// slot as unavailable rather than guess.
func (s *Availability) Check(ctx context.Context, requests []domain.BookingDetail) (*CheckResult, error) {
	paid, err := s.orders.DetailsByStatus(ctx, domain.PaymentSuccess)
	if err != nil {
		return nil, err
	}

	conflicts := []Conflict{}
	seen := map[string]struct{}{}
	for _, req := range requests {
		if req.Date == "" || len(req.Times) == 0 {
			continue
		}
		for _, oo := range paid {
			for _, line := range oo.Details {
				if line.Date != req.Date || len(line.Times) == 0 {
					continue
				}
				overlap := intersectTimes(req.Times, line.Times)
				if len(overlap) == 0 {
					continue
				}
				key := line.Date + "|" + strings.Join(overlap, ",") + "|" + line.ProductLabel
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				conflicts = append(conflicts, Conflict{Date: line.Date, Times: overlap, Label: line.ProductLabel})
			}
		}
	}
	return &CheckResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// TakenByDate rebuilds the availability index: date -> sorted session times
// occupied by paid orders.
func (s *Availability) TakenByDate(ctx context.Context) (map[string][]string, error) {
	paid, err := s.orders.DetailsByStatus(ctx, domain.PaymentSuccess)
	if err != nil {
		return nil, err
	}
	byDate := map[string]map[string]struct{}{}
	for _, oo := range paid {
		for _, line := range oo.Details {
			if line.Date == "" || len(line.Times) == 0 {
				continue
			}
			set, ok := byDate[line.Date]
			if !ok {
				set = map[string]struct{}{}
				byDate[line.Date] = set
			}
			for _, t := range line.Times {
				set[t] = struct{}{}
			}
		}
	}
	out := make(map[string][]string, len(byDate))
	for date, set := range byDate {
		times := make([]string, 0, len(set))
		for t := range set {
			times = append(times, t)
		}
		sort.Strings(times)
		out[date] = times
	}
	return out, nil
}

func intersectTimes(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	var out []string
	for _, t := range a {
		if _, ok := inB[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
