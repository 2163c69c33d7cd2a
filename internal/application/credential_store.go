package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	repo "github.com/oksasatya/course-subscription-api/internal/domain/repository"
	"github.com/oksasatya/course-subscription-api/pkg/apperr"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// CredentialStore owns user persistence and the hash-and-compare logic.
type CredentialStore struct {
	Repo repo.UserRepository
}

func NewCredentialStore(r repo.UserRepository) *CredentialStore {
	return &CredentialStore{Repo: r}
}

type NewUser struct {
	FirstName string
	LastName  *string
	Age       *int
	Email     string
	Password  string
}

// Create hashes the password and persists the user.
func (s *CredentialStore) Create(ctx context.Context, in NewUser) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &entity.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
		Email:     in.Email,
		Password:  hash,
		CourseIDs: []string{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, apperr.Internal("create user", err)
	}
	return u, nil
}

// FindByEmail returns nil, nil when no user has that email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("find user by email", err)
	}
	return u, nil
}

// FindByID returns nil, nil when id is malformed or unknown.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	u, err := s.Repo.GetByID(ctx, parsed.String())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("find user by id", err)
	}
	return u, nil
}

func (s *CredentialStore) ComparePassword(u *entity.User, candidate string) bool {
	return helpers.CompareHashAndPassword(u.Password, candidate)
}
