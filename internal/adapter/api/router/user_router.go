package router

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/adapter/api/handler"
	"campuslink/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.GET("/search", userHandler.SearchUsers)
}
