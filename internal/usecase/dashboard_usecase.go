package usecase

import (
	"context"
	"log"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
)

type DashboardStats struct {
	TotalStudents      int64 `json:"total_students"`
	TotalCourses       int64 `json:"total_courses"`
	PendingAssignments int64 `json:"pending_assignments"`
	UnreadMessages     int   `json:"unread_messages"`
}

type DashboardUseCase struct {
	userRepo     repository.UserRepository
	courseRepo   repository.CourseRepository
	assignmentUC *AssignmentUseCase
	sessions     *SessionManager
}

func NewDashboardUseCase(userRepo repository.UserRepository, courseRepo repository.CourseRepository, assignmentUC *AssignmentUseCase, sessions *SessionManager) *DashboardUseCase {
	return &DashboardUseCase{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		assignmentUC: assignmentUC,
		sessions:     sessions,
	}
}

// Stats aggregates the dashboard tiles. Individual failures degrade the tile
// to zero rather than failing the whole dashboard.
func (uc *DashboardUseCase) Stats(ctx context.Context, user *entity.User) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if students, err := uc.userRepo.CountByRole(ctx, entity.RoleStudent); err == nil {
		stats.TotalStudents = students
	} else {
		log.Printf("DashboardStats Warning: student count failed: %v", err)
	}

	if courses, err := uc.courseRepo.Count(ctx); err == nil {
		stats.TotalCourses = courses
	} else {
		log.Printf("DashboardStats Warning: course count failed: %v", err)
	}

	if pending, err := uc.assignmentUC.CountPendingFor(ctx, user); err == nil {
		stats.PendingAssignments = pending
	} else {
		log.Printf("DashboardStats Warning: pending assignment count failed: %v", err)
	}

	if session, err := uc.sessions.Get(user.ID); err == nil {
		stats.UnreadMessages = session.UnreadTotal()
	}

	return stats, nil
}
