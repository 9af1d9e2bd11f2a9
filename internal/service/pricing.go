package service

import (
	"errors"

	"github.com/iFredsz/nikhu-booking/internal/domain"
)

var ErrOverAllocated = errors.New("addon_over_allocated")

// AddOnSelection is a priced add-on choice for one cart line. A flat add-on
// is a binary toggle; a per-session add-on carries an allocation of units to
// individual session labels.
type AddOnSelection struct {
	Price      int64
	Kind       domain.AddOnKind
	Quantity   int
	PerSession map[string]int
}

// AllocateSession assigns qty units of a per-session add-on to one session
// label. An allocation that would push the total past the selected quantity
// is rejected before it can affect any total.
func AllocateSession(alloc map[string]int, timeLabel string, qty, selectedQty int) error {
	if qty < 0 {
		return ErrOverAllocated
	}
	sum := qty
	for t, q := range alloc {
		if t != timeLabel {
			sum += q
		}
	}
	if sum > selectedQty {
		return ErrOverAllocated
	}
	alloc[timeLabel] = qty
	return nil
}

// ComputeTotal prices one cart line. Pure: identical inputs always produce
// the identical output.
//
//	base     = basePrice × peopleCount × max(sessionCount, 1)
//	flat     = price × peopleCount × max(sessionCount, 1)
//	per-sess = price × sum(allocated units)
//	total    = base + add-ons − voucherDiscount
//
// The result may be negative when the discount exceeds the subtotal; flooring
// is the caller's call.
func ComputeTotal(basePrice int64, peopleCount, sessionCount int, addOns []AddOnSelection, voucherDiscount int64) int64 {
	sessions := sessionCount
	if sessions < 1 {
		sessions = 1
	}
	total := basePrice * int64(peopleCount) * int64(sessions)
	for _, a := range addOns {
		switch a.Kind {
		case domain.AddOnPerSession:
			units := 0
			for _, q := range a.PerSession {
				units += q
			}
			total += a.Price * int64(units)
		default:
			total += a.Price * int64(peopleCount) * int64(sessions)
		}
	}
	return total - voucherDiscount
}
