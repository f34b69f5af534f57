package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"campuslink/internal/domain/entity"
	"campuslink/internal/usecase"
	"campuslink/pkg/errors"
	"campuslink/pkg/response"
	"campuslink/pkg/utils"
)

type AssignmentHandler struct {
	assignmentUseCase *usecase.AssignmentUseCase
	courseUseCase     *usecase.CourseUseCase
}

func NewAssignmentHandler(assignmentUseCase *usecase.AssignmentUseCase, courseUseCase *usecase.CourseUseCase) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentUseCase: assignmentUseCase,
		courseUseCase:     courseUseCase,
	}
}

type createAssignmentRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description"`
	CourseID       string `json:"course_id" validate:"required"`
	DueDate        string `json:"due_date" validate:"required"`
	MaxScore       int    `json:"max_score" validate:"omitempty,min=1"`
	AssignmentType string `json:"assignment_type" validate:"omitempty,oneof=homework quiz exam project"`
	Instructions   string `json:"instructions"`
}

func (h *AssignmentHandler) ListAssignments(c echo.Context) error {
	user := c.Get("user").(*entity.User)
	params := utils.PageFromRequest(c)

	assignments, total, err := h.assignmentUseCase.ListForUser(c.Request().Context(), user, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, assignments, total, params.Page, params.PageSize)
}

func (h *AssignmentHandler) ListByCourse(c echo.Context) error {
	params := utils.PageFromRequest(c)

	assignments, total, err := h.assignmentUseCase.ListByCourse(c.Request().Context(), c.Param("id"), params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, assignments, total, params.Page, params.PageSize)
}

func (h *AssignmentHandler) GetAssignment(c echo.Context) error {
	assignment, err := h.assignmentUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, assignment)
}

func (h *AssignmentHandler) CreateAssignment(c echo.Context) error {
	user := c.Get("user").(*entity.User)

	var req createAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return response.Error(c, errors.Validation("due_date must be an RFC3339 timestamp"))
	}

	assignment, err := h.assignmentUseCase.Create(c.Request().Context(), user, usecase.CreateAssignmentInput{
		Title:          req.Title,
		Description:    req.Description,
		CourseID:       req.CourseID,
		DueDate:        dueDate,
		MaxScore:       req.MaxScore,
		AssignmentType: req.AssignmentType,
		Instructions:   req.Instructions,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, assignment)
}
