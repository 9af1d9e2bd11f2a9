package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailure PaymentStatus = "failure"
	PaymentExpired PaymentStatus = "expired"
)

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailure || s == PaymentExpired
}

type AddOnLine struct {
	AddOnID    string         `json:"addon_id"`
	Name       string         `json:"name"`
	Price      int64          `json:"price"`
	Kind       AddOnKind      `json:"kind"`
	Quantity   int            `json:"quantity"`
	// PerSession maps a session label to the quantity allocated to it.
	// Only used when Kind == AddOnPerSession.
	PerSession map[string]int `json:"per_session,omitempty"`
}

// BookingDetail is one cart line of an order: a product booked on one date
// for a set of session times.
type BookingDetail struct {
	ProductID     string      `json:"product_id"`
	ProductLabel  string      `json:"product_label"`
	Date          string      `json:"date"` // YYYY-MM-DD
	Times         []string    `json:"times"`
	PeopleCount   int         `json:"people_count"`
	AddOns        []AddOnLine `json:"addons,omitempty"`
	VoucherCode   string      `json:"voucher_code,omitempty"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
}

type BookingDetails []BookingDetail

func (d BookingDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *BookingDetails) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = nil
		return nil
	}
	return errors.New("unsupported booking details source")
}

// Order is the durable record of one reservation attempt. It is never
// deleted, only transitioned: pending -> success | failure | expired.
type Order struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	OwnerID       string         `gorm:"primaryKey;index" json:"owner_id"`
	PaymentStatus PaymentStatus  `gorm:"index" json:"payment_status"`
	GrossAmount   int64          `json:"gross_amount"`
	Details       BookingDetails `gorm:"type:jsonb" json:"details"`
	PaymentToken  string         `json:"payment_token,omitempty"`
	RedirectURL   string         `json:"redirect_url,omitempty"`
	// ConflictNoted is set by the recheck worker when another order won the
	// same slot after this one was created; clients hide the payment action.
	ConflictNoted bool      `json:"conflict_noted"`
	Note          string    `json:"note,omitempty"`
	ExpireAt      time.Time `gorm:"index" json:"expire_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
