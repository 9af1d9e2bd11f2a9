// Package gateway talks to the hosted payment provider: token creation for a
// pending order, webhook signature verification, and the order-id composition
// the webhook uses to route a notification back to its owner.
package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gateway order ids are "ownerID-orderID". Contract (v1): the owner id must
// not contain the separator, the first separator splits the two parts, and
// the composed id must fit the gateway's 50 character cap.
const (
	orderIDSep    = "-"
	MaxOrderIDLen = 50
)

var (
	ErrOrderIDTooLong = errors.New("composed order id exceeds 50 characters")
	ErrBadOwnerID     = errors.New("owner id must not contain the separator")
	ErrBadOrderID     = errors.New("malformed gateway order id")
)

func EncodeOrderID(ownerID, orderID string) (string, error) {
	if ownerID == "" || strings.Contains(ownerID, orderIDSep) {
		return "", ErrBadOwnerID
	}
	if orderID == "" {
		return "", ErrBadOrderID
	}
	composed := ownerID + orderIDSep + orderID
	if len(composed) > MaxOrderIDLen {
		return "", ErrOrderIDTooLong
	}
	return composed, nil
}

// DecodeOrderID splits on the first separator only; the order part may itself
// contain separators.
func DecodeOrderID(composed string) (ownerID, orderID string, err error) {
	ownerID, orderID, ok := strings.Cut(composed, orderIDSep)
	if !ok || ownerID == "" || orderID == "" {
		return "", "", ErrBadOrderID
	}
	return ownerID, orderID, nil
}

// NewOrderID builds the internal (owner-local) order id from the creation
// time plus a random suffix.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:6])
}
