package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Repository contains all DB interactions for users and provider availability
// profiles. Profiles are owned by their doctor row; a doctor without a stored
// profile resolves to the default weekly template.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	ListDoctors(ctx context.Context) ([]User, error)

	Profile(ctx context.Context, providerID uuid.UUID) (availability.Profile, error)
	SaveProfile(ctx context.Context, profile availability.Profile) error
}
