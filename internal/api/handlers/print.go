package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comandero/internal/core"
	"comandero/internal/notify"
)

// PrintHandler exposes the four print operations. Every response carries
// the tri-state outcome the presentation layer renders as its status lamp.
type PrintHandler struct {
	service *core.PrintService
	hub     *notify.Hub
}

func NewPrintHandler(service *core.PrintService, hub *notify.Hub) *PrintHandler {
	return &PrintHandler{service: service, hub: hub}
}

type OutcomeResponse struct {
	State   core.OutcomeState `json:"state"`
	Message string            `json:"message"`
}

func (h *PrintHandler) TestPrint(c *gin.Context) {
	h.respond(c, h.service.TestPrint(c.Request.Context()))
}

func (h *PrintHandler) CheckConnectivity(c *gin.Context) {
	h.respond(c, h.service.CheckPrinter(c.Request.Context()))
}

func (h *PrintHandler) Reprint(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comanda id"})
		return
	}
	h.respond(c, h.service.Reprint(c.Request.Context(), id))
}

func (h *PrintHandler) DailyReport(c *gin.Context) {
	h.respond(c, h.service.DailyReport(c.Request.Context()))
}

// Status returns the most recent pipeline event, or a pending placeholder
// before anything has happened.
func (h *PrintHandler) Status(c *gin.Context) {
	if last := h.hub.Last(); last != nil {
		c.JSON(http.StatusOK, last)
		return
	}
	c.JSON(http.StatusOK, OutcomeResponse{State: core.OutcomePending, Message: "En espera..."})
}

func (h *PrintHandler) respond(c *gin.Context, out core.Outcome) {
	status := http.StatusOK
	if out.State == core.OutcomeError {
		status = http.StatusBadGateway
	}
	c.JSON(status, OutcomeResponse{State: out.State, Message: out.Message})
}
