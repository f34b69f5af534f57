package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.client.Collection("users").Where("email", "==", email).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user by email", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}

	return nil
}

// Search matches the query case-insensitively against name and email.
// Firestore has no substring queries, so the directory is scanned and
// filtered here.
func (r *firestoreUserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	iter := r.client.Collection("users").OrderBy("createdAt", firestore.Asc).Documents(ctx)
	var users []*entity.User

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}

		if query != "" && !matchesUser(&user, query) {
			continue
		}

		users = append(users, &user)
		if limit > 0 && len(users) == limit {
			break
		}
	}

	return users, nil
}

func (r *firestoreUserRepository) CountByRole(ctx context.Context, role entity.UserRole) (int64, error) {
	docs, err := r.client.Collection("users").Where("role", "==", string(role)).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count users", err)
	}
	return int64(len(docs)), nil
}

func matchesUser(user *entity.User, query string) bool {
	return strings.Contains(strings.ToLower(user.DisplayName()), query) ||
		strings.Contains(strings.ToLower(user.Email), query)
}
