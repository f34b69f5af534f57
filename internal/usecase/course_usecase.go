package usecase

import (
	"context"
	"log"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type CourseUseCase struct {
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
}

func NewCourseUseCase(courseRepo repository.CourseRepository, userRepo repository.UserRepository) *CourseUseCase {
	return &CourseUseCase{courseRepo: courseRepo, userRepo: userRepo}
}

type CreateCourseInput struct {
	Name         string
	Code         string
	Description  string
	Department   string
	Semester     string
	AcademicYear string
	Credits      int
	MaxStudents  int
}

// ListForUser returns the courses visible to the user: enrolment for
// students, ownership for teachers, everything for administrators.
func (uc *CourseUseCase) ListForUser(ctx context.Context, user *entity.User, limit, offset int) ([]*entity.Course, int64, error) {
	switch user.Role {
	case entity.RoleStudent:
		return uc.courseRepo.ListByStudent(ctx, user.ID, limit, offset)
	case entity.RoleTeacher:
		return uc.courseRepo.ListByTeacher(ctx, user.ID, limit, offset)
	case entity.RoleAdministrator:
		return uc.courseRepo.List(ctx, limit, offset)
	default:
		return nil, 0, errors.Forbidden("Unknown role", nil)
	}
}

func (uc *CourseUseCase) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	return uc.courseRepo.GetByID(ctx, id)
}

func (uc *CourseUseCase) Create(ctx context.Context, teacher *entity.User, input CreateCourseInput) (*entity.Course, error) {
	if teacher.Role != entity.RoleTeacher && teacher.Role != entity.RoleAdministrator {
		return nil, errors.Forbidden("Only teachers can create courses", nil)
	}
	if input.Name == "" || input.Code == "" {
		return nil, errors.Validation("course name and code are required")
	}

	course := &entity.Course{
		Name:         input.Name,
		Code:         input.Code,
		Description:  input.Description,
		TeacherID:    teacher.ID,
		Department:   input.Department,
		Semester:     input.Semester,
		AcademicYear: input.AcademicYear,
		Credits:      input.Credits,
		MaxStudents:  input.MaxStudents,
	}

	if err := uc.courseRepo.Create(ctx, course); err != nil {
		log.Printf("CreateCourse Error: teacher %s: %v", teacher.ID, err)
		return nil, err
	}
	return course, nil
}

// Enroll adds a student to a course roster, which also subscribes them to
// the course message thread.
func (uc *CourseUseCase) Enroll(ctx context.Context, courseID, studentID string) (*entity.Course, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	student, err := uc.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, errors.NotFound("Student", err)
	}
	if student.Role != entity.RoleStudent {
		return nil, errors.BadRequest("Only students can enroll in courses", nil)
	}

	for _, id := range course.StudentIDs {
		if id == studentID {
			return course, nil
		}
	}
	if course.MaxStudents > 0 && len(course.StudentIDs) >= course.MaxStudents {
		return nil, errors.Conflict("Course is full")
	}

	course.StudentIDs = append(course.StudentIDs, studentID)
	if err := uc.courseRepo.Update(ctx, course); err != nil {
		log.Printf("Enroll Error: course %s student %s: %v", courseID, studentID, err)
		return nil, err
	}
	return course, nil
}
