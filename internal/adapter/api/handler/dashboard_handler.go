package handler

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/usecase"
	"campuslink/pkg/response"
)

type DashboardHandler struct {
	dashboardUseCase *usecase.DashboardUseCase
	userUseCase      *usecase.UserUseCase
}

func NewDashboardHandler(dashboardUseCase *usecase.DashboardUseCase, userUseCase *usecase.UserUseCase) *DashboardHandler {
	return &DashboardHandler{
		dashboardUseCase: dashboardUseCase,
		userUseCase:      userUseCase,
	}
}

func (h *DashboardHandler) GetStats(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	stats, err := h.dashboardUseCase.Stats(c.Request().Context(), user)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
