package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"campuslink/internal/usecase"
	"campuslink/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name" validate:"omitempty,max=100"`
	LastName    string `json:"last_name" validate:"omitempty,max=100"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	Department  string `json:"department" validate:"omitempty,max=100"`
	YearOfStudy int    `json:"year_of_study" validate:"omitempty,min=1,max=10"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		AvatarURL:   req.AvatarURL,
		Department:  req.Department,
		YearOfStudy: req.YearOfStudy,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// SearchUsers backs the new-conversation picker in the messaging sidebar.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	userID := c.Get("uid").(string)

	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	users, err := h.userUseCase.SearchUsers(c.Request().Context(), userID, c.QueryParam("q"), limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}
