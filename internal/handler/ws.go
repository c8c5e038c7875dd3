package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tow/internal/service"
	"tow/internal/ws"
)

// WSHandler upgrades HTTP connections into hub-managed websocket sessions.
type WSHandler struct {
	hub           *ws.Hub
	driverService *service.DriverService
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, driverService *service.DriverService) *WSHandler {
	return &WSHandler{hub: hub, driverService: driverService}
}

// Driver handles GET /ws/driver/:id
func (h *WSHandler) Driver(c *gin.Context) {
	driverID := c.Param("id")
	if driverID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "driver id is required"})
		return
	}

	h.hub.ServeDriver(c.Writer, c.Request, driverID, h.driverService)
}

// Admin handles GET /ws/admin
func (h *WSHandler) Admin(c *gin.Context) {
	h.hub.ServeAdmin(c.Writer, c.Request)
}
