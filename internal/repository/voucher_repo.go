package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iFredsz/nikhu-booking/internal/domain"
)

var ErrVoucherNotFound = errors.New("voucher_not_found")

type VoucherRepo struct{ db *gorm.DB }

func NewVoucherRepo(db *gorm.DB) *VoucherRepo {
	return &VoucherRepo{db: db}
}

func (r *VoucherRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Voucher{})
}

func (r *VoucherRepo) Create(ctx context.Context, v *domain.Voucher) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VoucherRepo) ByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	var v domain.Voucher
	err := r.db.WithContext(ctx).First(&v, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepo) List(ctx context.Context) ([]domain.Voucher, error) {
	var out []domain.Voucher
	return out, r.db.WithContext(ctx).Order("code ASC").Find(&out).Error
}

func (r *VoucherRepo) Update(ctx context.Context, v *domain.Voucher) error {
	return r.db.WithContext(ctx).Model(&domain.Voucher{}).Where("code = ?", v.Code).Updates(v).Error
}

// IncrementUsage bumps the redemption counter after a successful payment.
// The usability check stays a point-in-time read at apply time, so concurrent
// redemptions can still exceed the limit; that behavior is accepted.
func (r *VoucherRepo) IncrementUsage(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("code = ?", code).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *VoucherRepo) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Delete(&domain.Voucher{}, "code = ?", code).Error
}
