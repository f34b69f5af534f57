package usecase

import (
	"context"
	"log"
	"time"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type AssignmentUseCase struct {
	assignmentRepo repository.AssignmentRepository
	courseRepo     repository.CourseRepository
}

func NewAssignmentUseCase(assignmentRepo repository.AssignmentRepository, courseRepo repository.CourseRepository) *AssignmentUseCase {
	return &AssignmentUseCase{assignmentRepo: assignmentRepo, courseRepo: courseRepo}
}

type CreateAssignmentInput struct {
	Title          string
	Description    string
	CourseID       string
	DueDate        time.Time
	MaxScore       int
	AssignmentType string
	Instructions   string
}

// ListForUser returns assignments across the user's courses.
func (uc *AssignmentUseCase) ListForUser(ctx context.Context, user *entity.User, limit, offset int) ([]*entity.Assignment, int64, error) {
	courseIDs, err := uc.courseIDsFor(ctx, user)
	if err != nil {
		return nil, 0, err
	}
	if len(courseIDs) == 0 {
		return nil, 0, nil
	}
	return uc.assignmentRepo.ListByCourses(ctx, courseIDs, limit, offset)
}

func (uc *AssignmentUseCase) ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]*entity.Assignment, int64, error) {
	return uc.assignmentRepo.ListByCourse(ctx, courseID, limit, offset)
}

func (uc *AssignmentUseCase) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	return uc.assignmentRepo.GetByID(ctx, id)
}

func (uc *AssignmentUseCase) Create(ctx context.Context, teacher *entity.User, input CreateAssignmentInput) (*entity.Assignment, error) {
	if teacher.Role != entity.RoleTeacher && teacher.Role != entity.RoleAdministrator {
		return nil, errors.Forbidden("Only teachers can create assignments", nil)
	}
	if input.Title == "" || input.CourseID == "" {
		return nil, errors.Validation("assignment title and course are required")
	}

	course, err := uc.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, errors.NotFound("Course", err)
	}
	if teacher.Role == entity.RoleTeacher && course.TeacherID != teacher.ID {
		return nil, errors.Forbidden("You can only create assignments for your own courses", nil)
	}

	assignment := &entity.Assignment{
		Title:          input.Title,
		Description:    input.Description,
		CourseID:       input.CourseID,
		TeacherID:      teacher.ID,
		DueDate:        input.DueDate,
		MaxScore:       input.MaxScore,
		AssignmentType: input.AssignmentType,
		Instructions:   input.Instructions,
	}

	if err := uc.assignmentRepo.Create(ctx, assignment); err != nil {
		log.Printf("CreateAssignment Error: teacher %s course %s: %v", teacher.ID, input.CourseID, err)
		return nil, err
	}
	return assignment, nil
}

// CountPendingFor counts assignments across the user's courses whose due
// date is still ahead.
func (uc *AssignmentUseCase) CountPendingFor(ctx context.Context, user *entity.User) (int64, error) {
	courseIDs, err := uc.courseIDsFor(ctx, user)
	if err != nil {
		return 0, err
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}
	return uc.assignmentRepo.CountPendingAfter(ctx, courseIDs, time.Now())
}

func (uc *AssignmentUseCase) courseIDsFor(ctx context.Context, user *entity.User) ([]string, error) {
	var (
		courses []*entity.Course
		err     error
	)
	switch user.Role {
	case entity.RoleStudent:
		courses, _, err = uc.courseRepo.ListByStudent(ctx, user.ID, -1, 0)
	case entity.RoleTeacher:
		courses, _, err = uc.courseRepo.ListByTeacher(ctx, user.ID, -1, 0)
	case entity.RoleAdministrator:
		courses, _, err = uc.courseRepo.List(ctx, -1, 0)
	default:
		return nil, errors.Forbidden("Unknown role", nil)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
	}
	return ids, nil
}
