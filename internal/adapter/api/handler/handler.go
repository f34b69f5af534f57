package handler

import (
	"campuslink/internal/usecase"
)

var (
	userHandler       *UserHandler
	courseHandler     *CourseHandler
	assignmentHandler *AssignmentHandler
	dashboardHandler  *DashboardHandler
	messagingHandler  *MessagingHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	courseUseCase *usecase.CourseUseCase,
	assignmentUseCase *usecase.AssignmentUseCase,
	dashboardUseCase *usecase.DashboardUseCase,
	sessionManager *usecase.SessionManager,
) {
	userHandler = NewUserHandler(userUseCase)
	courseHandler = NewCourseHandler(courseUseCase)
	assignmentHandler = NewAssignmentHandler(assignmentUseCase, courseUseCase)
	dashboardHandler = NewDashboardHandler(dashboardUseCase, userUseCase)
	messagingHandler = NewMessagingHandler(sessionManager, userUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetCourseHandler() *CourseHandler {
	return courseHandler
}

func GetAssignmentHandler() *AssignmentHandler {
	return assignmentHandler
}

func GetDashboardHandler() *DashboardHandler {
	return dashboardHandler
}

func GetMessagingHandler() *MessagingHandler {
	return messagingHandler
}
