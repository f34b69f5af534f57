package repository

import (
	"context"
	"log"
	"sort"
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

// Firestore "in" queries accept at most 30 values, so course filters are
// chunked.
const courseIDChunkSize = 30

type firestoreAssignmentRepository struct {
	client *firestore.Client
}

func NewFirestoreAssignmentRepository(client *firestore.Client) repository.AssignmentRepository {
	return &firestoreAssignmentRepository{
		client: client,
	}
}

func (r *firestoreAssignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	assignment.CreatedAt = time.Now()

	_, err := r.client.Collection("assignments").Doc(assignment.ID).Set(ctx, assignment)
	if err != nil {
		return errors.Internal("Failed to create assignment", err)
	}

	return nil
}

func (r *firestoreAssignmentRepository) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	doc, err := r.client.Collection("assignments").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Assignment", err)
		}
		return nil, errors.Internal("Failed to get assignment", err)
	}

	var assignment entity.Assignment
	if err := doc.DataTo(&assignment); err != nil {
		return nil, errors.Internal("Failed to parse assignment data", err)
	}
	return &assignment, nil
}

func (r *firestoreAssignmentRepository) ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]*entity.Assignment, int64, error) {
	assignments, err := r.collect(ctx, r.client.Collection("assignments").Where("courseId", "==", courseID))
	if err != nil {
		return nil, 0, err
	}
	return paginate(assignments, limit, offset)
}

func (r *firestoreAssignmentRepository) ListByCourses(ctx context.Context, courseIDs []string, limit, offset int) ([]*entity.Assignment, int64, error) {
	var assignments []*entity.Assignment

	for _, chunk := range chunkIDs(courseIDs) {
		part, err := r.collect(ctx, r.client.Collection("assignments").Where("courseId", "in", chunk))
		if err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, part...)
	}

	return paginate(assignments, limit, offset)
}

func (r *firestoreAssignmentRepository) CountPendingAfter(ctx context.Context, courseIDs []string, after time.Time) (int64, error) {
	var total int64

	for _, chunk := range chunkIDs(courseIDs) {
		docs, err := r.client.Collection("assignments").
			Where("courseId", "in", chunk).
			Where("dueDate", ">", after).
			Documents(ctx).GetAll()
		if err != nil {
			log.Printf("Firestore error while counting pending assignments: %v", err)
			return 0, errors.Internal("Failed to count pending assignments", err)
		}
		total += int64(len(docs))
	}

	return total, nil
}

func (r *firestoreAssignmentRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Assignment, error) {
	iter := query.Documents(ctx)
	var assignments []*entity.Assignment

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating assignments: %v", err)
			return nil, errors.Internal("Failed to iterate assignments", err)
		}

		var assignment entity.Assignment
		if err := doc.DataTo(&assignment); err != nil {
			return nil, errors.Internal("Failed to parse assignment data", err)
		}
		assignments = append(assignments, &assignment)
	}

	return assignments, nil
}

func paginate(assignments []*entity.Assignment, limit, offset int) ([]*entity.Assignment, int64, error) {
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].DueDate.Before(assignments[j].DueDate)
	})

	total := int64(len(assignments))
	if offset > 0 {
		if offset >= len(assignments) {
			return nil, total, nil
		}
		assignments = assignments[offset:]
	}
	if limit > 0 && len(assignments) > limit {
		assignments = assignments[:limit]
	}
	return assignments, total, nil
}

func chunkIDs(ids []string) [][]string {
	var chunks [][]string
	for len(ids) > courseIDChunkSize {
		chunks = append(chunks, ids[:courseIDChunkSize])
		ids = ids[courseIDChunkSize:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
