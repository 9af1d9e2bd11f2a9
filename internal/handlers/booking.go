package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iFredsz/nikhu-booking/internal/repository"
	"github.com/iFredsz/nikhu-booking/internal/service"
)

type BookingHandler struct {
	svc *service.BookingSvc
}

func NewBookingHandler(svc *service.BookingSvc) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func ownerID(c *gin.Context) string {
	sub, _ := c.Get("sub")
	id, _ := sub.(string)
	return id
}

// POST /v1/orders
func (h *BookingHandler) Create(c *gin.Context) {
	var in struct {
		Lines []service.CreateOrderLine `json:"lines" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.Create(c.Request.Context(), ownerID(c), in.Lines)
	if err != nil {
		var conflict *service.ConflictError
		switch {
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{"error": "slot already taken", "conflicts": conflict.Conflicts})
		case errors.Is(err, service.ErrInvalidRequest),
			errors.Is(err, service.ErrUnknownSessionTime),
			errors.Is(err, service.ErrBreakTime),
			errors.Is(err, service.ErrOverAllocated),
			errors.Is(err, service.ErrVoucherNotUsable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GET /v1/orders
func (h *BookingHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /v1/orders/:id
func (h *BookingHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /v1/orders/:id/recheck
func (h *BookingHandler) Recheck(c *gin.Context) {
	res, err := h.svc.Recheck(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payable": res.Available, "conflicts": res.Conflicts})
}
