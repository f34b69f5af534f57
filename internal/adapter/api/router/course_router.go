package router

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/adapter/api/handler"
	"campuslink/internal/adapter/api/middleware"
	"campuslink/internal/domain/entity"
)

func SetupCourseRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	courseHandler := handler.GetCourseHandler()
	assignmentHandler := handler.GetAssignmentHandler()

	courses := e.Group("/v1/courses")
	courses.Use(authMiddleware.Authenticate)

	anyRole := roleMiddleware.Require(entity.RoleStudent, entity.RoleTeacher, entity.RoleAdministrator)

	courses.GET("", courseHandler.ListCourses, anyRole)
	courses.POST("", courseHandler.CreateCourse, roleMiddleware.TeachersOnly)
	courses.GET("/:id", courseHandler.GetCourse)
	courses.POST("/:id/enroll", courseHandler.Enroll)
	courses.GET("/:id/assignments", assignmentHandler.ListByCourse)
}
