package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iFredsz/nikhu-booking/internal/service"
)

type OpsHandler struct {
	sweeper *service.Sweeper
}

func NewOpsHandler(sweeper *service.Sweeper) *OpsHandler {
	return &OpsHandler{sweeper: sweeper}
}

// POST /internal/sweep — scheduled trigger for the expiry sweeper. No
// arguments; reports how many pending orders it expired.
func (h *OpsHandler) Sweep(c *gin.Context) {
	n, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "expired": n})
}
