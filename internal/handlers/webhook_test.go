package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/gateway"
	"github.com/iFredsz/nikhu-booking/internal/repository"
	"github.com/iFredsz/nikhu-booking/internal/service"
)

type stubOrders struct {
	order *domain.Order
}

func (s *stubOrders) Create(ctx context.Context, o *domain.Order) error { return nil }

func (s *stubOrders) ByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	if s.order != nil && s.order.OwnerID == ownerID && s.order.ID == id {
		return s.order, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubOrders) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrders) TransitionFromPending(ctx context.Context, ownerID, id string, to domain.PaymentStatus, note string) (bool, error) {
	if s.order == nil || s.order.OwnerID != ownerID || s.order.ID != id {
		return false, nil
	}
	if s.order.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	s.order.PaymentStatus = to
	return true, nil
}

type stubVouchers struct{}

func (stubVouchers) ByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	return nil, repository.ErrVoucherNotFound
}
func (stubVouchers) IncrementUsage(ctx context.Context, code string) error { return nil }

type stubPublisher struct{}

func (stubPublisher) PublishJSON(ctx context.Context, key string, v any) error { return nil }

const testServerKey = "server-key"

func webhookRouter(orders *stubOrders) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewBookingSvc(orders, nil, stubVouchers{}, nil, nil, stubPublisher{}, 2*time.Hour)
	h := NewWebhookHandler(svc, testServerKey)
	r := gin.New()
	r.POST("/v1/payments/webhook", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "ORD-abc", OwnerID: "U1", PaymentStatus: domain.PaymentPending}}
	r := webhookRouter(orders)

	w := postWebhook(r, map[string]string{
		"order_id":           "U1-ORD-abc",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "400000",
		"signature_key":      "forged",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domain.PaymentPending, orders.order.PaymentStatus)
}

func TestWebhookSettlesPendingOrder(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "ORD-abc", OwnerID: "U1", PaymentStatus: domain.PaymentPending}}
	r := webhookRouter(orders)

	w := postWebhook(r, map[string]string{
		"order_id":           "U1-ORD-abc",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "400000",
		"signature_key":      gateway.Signature("U1-ORD-abc", "200", "400000", testServerKey),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PaymentSuccess, orders.order.PaymentStatus)
}

func TestWebhookRetryIsNoOp(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: "ORD-abc", OwnerID: "U1", PaymentStatus: domain.PaymentPending}}
	r := webhookRouter(orders)

	body := map[string]string{
		"order_id":           "U1-ORD-abc",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "400000",
		"signature_key":      gateway.Signature("U1-ORD-abc", "200", "400000", testServerKey),
	}
	require.Equal(t, http.StatusOK, postWebhook(r, body).Code)
	require.Equal(t, http.StatusOK, postWebhook(r, body).Code)
	assert.Equal(t, domain.PaymentSuccess, orders.order.PaymentStatus)
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	r := webhookRouter(&stubOrders{})
	w := postWebhook(r, map[string]string{"order_id": "U1-ORD-abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
