package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iFredsz/nikhu-booking/internal/gateway"
	"github.com/iFredsz/nikhu-booking/internal/service"
)

type WebhookHandler struct {
	svc       *service.BookingSvc
	serverKey string
}

func NewWebhookHandler(svc *service.BookingSvc, serverKey string) *WebhookHandler {
	return &WebhookHandler{svc: svc, serverKey: serverKey}
}

// POST /v1/payments/webhook
//
// The gateway retries on non-2xx, so anything recognizably ours answers 200
// even when it results in no transition.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var in struct {
		OrderID           string `json:"order_id" binding:"required"`
		TransactionStatus string `json:"transaction_status" binding:"required"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !gateway.VerifySignature(in.OrderID, in.StatusCode, in.GrossAmount, h.serverKey, in.SignatureKey) {
		log.Printf("[webhook] bad signature for %s", in.OrderID)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := h.svc.HandleNotification(c.Request.Context(), in.OrderID, in.TransactionStatus); err != nil {
		log.Printf("[webhook] handle %s: %v", in.OrderID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
