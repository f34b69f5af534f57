package router

import (
	"campuslink/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	SetupUserRouter(e, authMiddleware)
	SetupCourseRouter(e, authMiddleware, roleMiddleware)
	SetupAssignmentRouter(e, authMiddleware, roleMiddleware)
	SetupDashboardRouter(e, authMiddleware)
	SetupMessagingRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
