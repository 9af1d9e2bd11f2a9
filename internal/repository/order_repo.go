package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/iFredsz/nikhu-booking/internal/domain"
)

var ErrNotFound = errors.New("order_not_found")

// OwnedOrder is one row of the cross-owner aggregate scan: the order key plus
// its booking lines, regardless of which customer owns it.
type OwnedOrder struct {
	OwnerID string
	OrderID string
	Details domain.BookingDetails
}

// orderKey is the projection used by the sweeper; it deliberately avoids the
// details column so one corrupt jsonb blob cannot block expiry of the rest.
type orderKey struct {
	ID       string
	OwnerID  string
	ExpireAt time.Time
}

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Order{})
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) ByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "owner_id = ? AND id = ?", ownerID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// TransitionFromPending moves an order out of pending. Terminal states are
// never left, so a transition on an already-resolved order is a no-op and
// returns false. This is what makes webhook retries and repeated sweeps safe.
func (r *OrderRepo) TransitionFromPending(ctx context.Context, ownerID, id string, to domain.PaymentStatus, note string) (bool, error) {
	updates := map[string]any{"payment_status": to, "updated_at": time.Now().UTC()}
	if note != "" {
		updates["note"] = note
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("owner_id = ? AND id = ? AND payment_status = ?", ownerID, id, domain.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DetailsByStatus is the single cross-owner aggregate query the conflict
// checker and recheck worker rely on. Rows whose details blob fails to decode
// are skipped and logged rather than aborting the scan; a failure of the scan
// itself is returned.
func (r *OrderRepo) DetailsByStatus(ctx context.Context, status domain.PaymentStatus) ([]OwnedOrder, error) {
	rows, err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("id", "owner_id", "details").
		Where("payment_status = ?", status).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("scan orders by status: %w", err)
	}
	defer rows.Close()

	var out []OwnedOrder
	for rows.Next() {
		var id, ownerID string
		var raw []byte
		if err := rows.Scan(&id, &ownerID, &raw); err != nil {
			log.Printf("[orders] skip unreadable row: %v", err)
			continue
		}
		var details domain.BookingDetails
		if err := json.Unmarshal(raw, &details); err != nil {
			log.Printf("[orders] skip order %s/%s with bad details: %v", ownerID, id, err)
			continue
		}
		out = append(out, OwnedOrder{OwnerID: ownerID, OrderID: id, Details: details})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan orders by status: %w", err)
	}
	return out, nil
}

// PendingDueBefore lists keys of pending orders whose expiry has passed.
func (r *OrderRepo) PendingDueBefore(ctx context.Context, t time.Time) ([]struct{ OwnerID, ID string }, error) {
	var keys []orderKey
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("id", "owner_id", "expire_at").
		Where("payment_status = ? AND expire_at < ?", domain.PaymentPending, t).
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	out := make([]struct{ OwnerID, ID string }, 0, len(keys))
	for _, k := range keys {
		out = append(out, struct{ OwnerID, ID string }{k.OwnerID, k.ID})
	}
	return out, nil
}

func (r *OrderRepo) FlagConflict(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("owner_id = ? AND id = ? AND payment_status = ?", ownerID, id, domain.PaymentPending).
		Update("conflict_noted", true).Error
}
