package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iFredsz/nikhu-booking/internal/cache"
	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/service"
)

type AvailabilityHandler struct {
	avail *service.Availability
	cache cache.CalendarCache
}

func NewAvailabilityHandler(avail *service.Availability, cc cache.CalendarCache) *AvailabilityHandler {
	return &AvailabilityHandler{avail: avail, cache: cc}
}

// GET /v1/slots
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"times":       domain.SessionTimes,
		"break_times": domain.BreakTimes,
		"bookable":    domain.BookableTimes(),
	})
}

// POST /v1/availability/check
func (h *AvailabilityHandler) Check(c *gin.Context) {
	var in struct {
		Requests []struct {
			Date  string   `json:"date" binding:"required"`
			Times []string `json:"times" binding:"required"`
		} `json:"requests" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reqs := make([]domain.BookingDetail, 0, len(in.Requests))
	for _, r := range in.Requests {
		reqs = append(reqs, domain.BookingDetail{Date: r.Date, Times: r.Times})
	}
	res, err := h.avail.Check(c.Request.Context(), reqs)
	if err != nil {
		// Fail closed: when the scan cannot run, nothing is available.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability check unavailable"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /v1/availability/calendar?month=2026-09
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	month := c.Query("month")
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	if taken, err := h.cache.GetMonth(c.Request.Context(), month); err == nil {
		c.JSON(http.StatusOK, gin.H{"month": month, "taken": taken})
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("[availability] calendar cache read: %v", err)
	}

	all, err := h.avail.TakenByDate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability unavailable"})
		return
	}
	taken := map[string][]string{}
	for date, times := range all {
		if strings.HasPrefix(date, month) {
			taken[date] = times
		}
	}
	if err := h.cache.SetMonth(c.Request.Context(), month, taken); err != nil {
		log.Printf("[availability] calendar cache write: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "taken": taken})
}
