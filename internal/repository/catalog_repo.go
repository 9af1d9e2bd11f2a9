package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iFredsz/nikhu-booking/internal/domain"
)

// CatalogRepo covers the admin-managed collections: products, add-ons,
// portfolio items and testimonials.
type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Migrate() error {
	return r.db.AutoMigrate(
		&domain.Product{},
		&domain.AddOn{},
		&domain.PortfolioItem{},
		&domain.Testimonial{},
	)
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepo) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	qb := r.db.WithContext(ctx).Model(&domain.Product{})
	if activeOnly {
		qb = qb.Where("active = ?", true)
	}
	var out []domain.Product
	return out, qb.Order("label ASC").Find(&out).Error
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", p.ID).Updates(p).Error
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *CatalogRepo) CreateAddOn(ctx context.Context, a *domain.AddOn) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *CatalogRepo) AddOnByID(ctx context.Context, id string) (*domain.AddOn, error) {
	var a domain.AddOn
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepo) ListAddOns(ctx context.Context, activeOnly bool) ([]domain.AddOn, error) {
	qb := r.db.WithContext(ctx).Model(&domain.AddOn{})
	if activeOnly {
		qb = qb.Where("active = ?", true)
	}
	var out []domain.AddOn
	return out, qb.Order("name ASC").Find(&out).Error
}

func (r *CatalogRepo) UpdateAddOn(ctx context.Context, a *domain.AddOn) error {
	return r.db.WithContext(ctx).Model(&domain.AddOn{}).Where("id = ?", a.ID).Updates(a).Error
}

func (r *CatalogRepo) DeleteAddOn(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.AddOn{}, "id = ?", id).Error
}

func (r *CatalogRepo) CreatePortfolioItem(ctx context.Context, p *domain.PortfolioItem) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepo) ListPortfolio(ctx context.Context, category string) ([]domain.PortfolioItem, error) {
	qb := r.db.WithContext(ctx).Model(&domain.PortfolioItem{})
	if category != "" {
		qb = qb.Where("category = ?", category)
	}
	var out []domain.PortfolioItem
	return out, qb.Order("created_at DESC").Find(&out).Error
}

func (r *CatalogRepo) DeletePortfolioItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.PortfolioItem{}, "id = ?", id).Error
}

func (r *CatalogRepo) CreateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *CatalogRepo) ListTestimonials(ctx context.Context, approvedOnly bool) ([]domain.Testimonial, error) {
	qb := r.db.WithContext(ctx).Model(&domain.Testimonial{})
	if approvedOnly {
		qb = qb.Where("approved = ?", true)
	}
	var out []domain.Testimonial
	return out, qb.Order("created_at DESC").Find(&out).Error
}

func (r *CatalogRepo) UpdateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	return r.db.WithContext(ctx).Model(&domain.Testimonial{}).Where("id = ?", t.ID).Updates(t).Error
}

func (r *CatalogRepo) DeleteTestimonial(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Testimonial{}, "id = ?", id).Error
}
