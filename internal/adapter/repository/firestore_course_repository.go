package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type firestoreCourseRepository struct {
	client *firestore.Client
}

func NewFirestoreCourseRepository(client *firestore.Client) repository.CourseRepository {
	return &firestoreCourseRepository{
		client: client,
	}
}

func (r *firestoreCourseRepository) Create(ctx context.Context, course *entity.Course) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	course.CreatedAt = time.Now()

	_, err := r.client.Collection("courses").Doc(course.ID).Set(ctx, course)
	if err != nil {
		return errors.Internal("Failed to create course", err)
	}

	return nil
}

func (r *firestoreCourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	doc, err := r.client.Collection("courses").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Course", err)
		}
		return nil, errors.Internal("Failed to get course", err)
	}

	var course entity.Course
	if err := doc.DataTo(&course); err != nil {
		return nil, errors.Internal("Failed to parse course data", err)
	}
	return &course, nil
}

func (r *firestoreCourseRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Course, int64, error) {
	query := r.client.Collection("courses").Where("teacherId", "==", teacherID)
	return r.list(ctx, query, limit, offset)
}

func (r *firestoreCourseRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*entity.Course, int64, error) {
	query := r.client.Collection("courses").Where("studentIds", "array-contains", studentID)
	return r.list(ctx, query, limit, offset)
}

func (r *firestoreCourseRepository) List(ctx context.Context, limit, offset int) ([]*entity.Course, int64, error) {
	return r.list(ctx, r.client.Collection("courses").Query, limit, offset)
}

func (r *firestoreCourseRepository) Update(ctx context.Context, course *entity.Course) error {
	_, err := r.client.Collection("courses").Doc(course.ID).Set(ctx, course)
	if err != nil {
		return errors.Internal("Failed to update course", err)
	}
	return nil
}

func (r *firestoreCourseRepository) Count(ctx context.Context) (int64, error) {
	docs, err := r.client.Collection("courses").Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count courses", err)
	}
	return int64(len(docs)), nil
}

func (r *firestoreCourseRepository) list(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Course, int64, error) {
	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting courses: %v", err)
		return nil, 0, errors.Internal("Failed to count courses", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var courses []*entity.Course

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating courses: %v", err)
			return nil, 0, errors.Internal("Failed to iterate courses", err)
		}

		var course entity.Course
		if err := doc.DataTo(&course); err != nil {
			return nil, 0, errors.Internal("Failed to parse course data", err)
		}
		courses = append(courses, &course)
	}

	return courses, total, nil
}
