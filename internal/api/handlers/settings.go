package handlers

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"comandero/internal/settings"
)

// SettingsHandler manages the runtime-mutable configuration: the printer
// address the scheduler re-reads every cycle. Changing it here takes effect
// on the next poll without a restart.
type SettingsHandler struct {
	store *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

type PrinterSettingsResponse struct {
	Address string `json:"address"`
}

type UpdatePrinterSettingsRequest struct {
	Address string `json:"address" binding:"required"`
}

func (h *SettingsHandler) GetPrinter(c *gin.Context) {
	address, err := h.store.PrinterAddress(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}
	c.JSON(http.StatusOK, PrinterSettingsResponse{Address: address})
}

func (h *SettingsHandler) UpdatePrinter(c *gin.Context) {
	var req UpdatePrinterSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := strings.TrimSpace(req.Address)
	if !validPrinterAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address must be an IP, optionally with a port"})
		return
	}

	if err := h.store.SetPrinterAddress(c.Request.Context(), address); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, PrinterSettingsResponse{Address: address})
}

// validPrinterAddress accepts "host" or "host:port" where host is an IP
// literal. Hostnames are deliberately rejected: kitchen printers sit on
// fixed LAN addresses and a typo'd hostname would hang every poll cycle on
// DNS.
func validPrinterAddress(address string) bool {
	// Bare IP first, covering IPv6 literals like "::1" whose colons are
	// not a port separator.
	if _, err := netip.ParseAddr(address); err == nil {
		return true
	}
	_, err := netip.ParseAddrPort(address)
	return err == nil
}
