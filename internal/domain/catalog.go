package domain

import "time"

type AddOnKind string

const (
	AddOnFlat       AddOnKind = "flat"
	AddOnPerSession AddOnKind = "per_session"
)

// Product is a bookable package (e.g. self-photo studio, group session).
type Product struct {
	ID        string `gorm:"primaryKey"`
	Label     string
	BasePrice int64 // per person per session
	MaxPeople int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AddOn struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Price     int64
	Kind      AddOnKind
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Voucher struct {
	Code           string `gorm:"primaryKey"`
	DiscountAmount int64
	Active         bool
	UsageCount     int
	UsageLimit     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Usable is a point-in-time read; the limit is not enforced atomically, so
// concurrent redemptions can still exceed it.
func (v *Voucher) Usable() bool {
	return v.Active && v.UsageCount < v.UsageLimit
}

type PortfolioItem struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	ImageURL  string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Testimonial struct {
	ID        string `gorm:"primaryKey"`
	Author    string
	Message   string
	Rating    int
	Approved  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
