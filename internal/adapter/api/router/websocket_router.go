package router

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the realtime endpoint. Authentication happens
// inside the handler because upgrades cannot carry custom headers from
// browsers.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
