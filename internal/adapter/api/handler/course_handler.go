package handler

import (
	"github.com/labstack/echo/v4"

	"campuslink/internal/domain/entity"
	"campuslink/internal/usecase"
	"campuslink/pkg/response"
	"campuslink/pkg/utils"
)

type CourseHandler struct {
	courseUseCase *usecase.CourseUseCase
}

func NewCourseHandler(courseUseCase *usecase.CourseUseCase) *CourseHandler {
	return &CourseHandler{
		courseUseCase: courseUseCase,
	}
}

type createCourseRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Code         string `json:"code" validate:"required,max=20"`
	Description  string `json:"description"`
	Department   string `json:"department"`
	Semester     string `json:"semester"`
	AcademicYear string `json:"academic_year"`
	Credits      int    `json:"credits" validate:"omitempty,min=1,max=30"`
	MaxStudents  int    `json:"max_students" validate:"omitempty,min=1"`
}

func (h *CourseHandler) ListCourses(c echo.Context) error {
	user := c.Get("user").(*entity.User)
	params := utils.PageFromRequest(c)

	courses, total, err := h.courseUseCase.ListForUser(c.Request().Context(), user, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, courses, total, params.Page, params.PageSize)
}

func (h *CourseHandler) GetCourse(c echo.Context) error {
	course, err := h.courseUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, course)
}

func (h *CourseHandler) CreateCourse(c echo.Context) error {
	user := c.Get("user").(*entity.User)

	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	course, err := h.courseUseCase.Create(c.Request().Context(), user, usecase.CreateCourseInput{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		Department:   req.Department,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Credits:      req.Credits,
		MaxStudents:  req.MaxStudents,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, course)
}

// Enroll adds the caller to the course roster.
func (h *CourseHandler) Enroll(c echo.Context) error {
	userID := c.Get("uid").(string)

	course, err := h.courseUseCase.Enroll(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, course)
}
