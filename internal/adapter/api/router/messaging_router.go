package router

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/adapter/api/handler"
	"campuslink/internal/adapter/api/middleware"
)

// SetupMessagingRouter wires the REST surface of the messaging core. The
// realtime surface lives on /ws.
func SetupMessagingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	messagingHandler := handler.GetMessagingHandler()

	messaging := e.Group("/v1/messaging")
	messaging.Use(authMiddleware.Authenticate)

	messaging.GET("/conversations", messagingHandler.GetConversations)
	messaging.PUT("/conversations/:id/select", messagingHandler.SelectConversation)
	messaging.PUT("/conversations/:id/read", messagingHandler.MarkConversationRead)
	messaging.GET("/messages", messagingHandler.GetMessages)
	messaging.GET("/messages/search", messagingHandler.SearchMessages)
	messaging.POST("/messages", messagingHandler.SendMessage, middleware.MessagingRateLimit())
	messaging.GET("/presence", messagingHandler.GetPresence)
}
