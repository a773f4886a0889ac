package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/online-school/internal/domain/entity"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotTutor      = errors.New("user has no tutor profile")
)

// UserRepository persists users together with their role profile.
type UserRepository interface {
	// CreateAccount stores the user and its profile atomically.
	CreateAccount(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetAccount loads the user, its profile and, for tutors, the
	// education and certification records.
	GetAccount(ctx context.Context, userID string) (*entity.Account, error)

	AddEducation(ctx context.Context, userID string, e *entity.TutorEducation) error
	AddCertification(ctx context.Context, userID string, c *entity.TutorCertification) error
	SetTutorVerified(ctx context.Context, userID string, verified bool) error

	// DeleteUser removes the user; owned rows go with it.
	DeleteUser(ctx context.Context, id string) error
}
