package router

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/adapter/api/handler"
	"campuslink/internal/adapter/api/middleware"
	"campuslink/internal/domain/entity"
)

func SetupAssignmentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	assignmentHandler := handler.GetAssignmentHandler()

	assignments := e.Group("/v1/assignments")
	assignments.Use(authMiddleware.Authenticate)

	anyRole := roleMiddleware.Require(entity.RoleStudent, entity.RoleTeacher, entity.RoleAdministrator)

	assignments.GET("", assignmentHandler.ListAssignments, anyRole)
	assignments.POST("", assignmentHandler.CreateAssignment, roleMiddleware.TeachersOnly)
	assignments.GET("/:id", assignmentHandler.GetAssignment)
}
