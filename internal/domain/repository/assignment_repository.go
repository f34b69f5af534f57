package repository

import (
	"context"
	"time"

	"campuslink/internal/domain/entity"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.Assignment) error
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]*entity.Assignment, int64, error)
	ListByCourses(ctx context.Context, courseIDs []string, limit, offset int) ([]*entity.Assignment, int64, error)
	CountPendingAfter(ctx context.Context, courseIDs []string, after time.Time) (int64, error)
}
