package repository

import (
	"context"

	"campuslink/internal/domain/entity"
)

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Course, int64, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*entity.Course, int64, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Course, int64, error)
	Update(ctx context.Context, course *entity.Course) error
	Count(ctx context.Context) (int64, error)
}
