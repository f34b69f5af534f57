package usecase

import (
	"context"
	"log"
	"time"

	"campuslink/internal/domain/entity"
	"campuslink/internal/domain/repository"
	"campuslink/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	AvatarURL   string
	Department  string
	YearOfStudy int
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("GetProfile Error: user %s not found: %v", userID, err)
		return nil, err
	}
	return user, nil
}

// EnsureUser returns the stored profile, creating a skeleton record on first
// sign-in so the directory can always resolve the identity.
func (uc *UserUseCase) EnsureUser(ctx context.Context, userID, email string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	user = &entity.User{
		ID:    userID,
		Email: email,
		Role:  entity.RoleStudent,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		log.Printf("EnsureUser Error: failed to create user %s: %v", userID, err)
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.AvatarURL = input.AvatarURL
	user.Department = input.Department
	user.YearOfStudy = input.YearOfStudy
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("UpdateProfile Error: user %s: %v", userID, err)
		return nil, err
	}
	return user, nil
}

// SearchUsers backs the new-conversation picker. The caller is excluded from
// the results.
func (uc *UserUseCase) SearchUsers(ctx context.Context, selfID, query string, limit int) ([]*entity.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := uc.userRepo.Search(ctx, query, limit+1)
	if err != nil {
		log.Printf("SearchUsers Error: query %q: %v", query, err)
		return nil, err
	}

	filtered := make([]*entity.User, 0, len(users))
	for _, user := range users {
		if user.ID == selfID {
			continue
		}
		filtered = append(filtered, user)
		if len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}
