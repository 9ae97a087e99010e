package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type RegisterParams struct {
	Name           string
	Email          string
	Password       string
	Role           Role
	Specialization *string
	Contact        *string
}

// Register creates an account. Doctors start from the default weekly
// template, persisted immediately so later schedule edits have a base row.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	available := true
	u := &User{
		ID:             uuid.New(),
		Name:           params.Name,
		Email:          params.Email,
		PasswordHash:   string(hash),
		Role:           params.Role,
		Specialization: params.Specialization,
		Contact:        params.Contact,
	}
	if params.Role == RoleDoctor {
		u.IsAvailable = &available
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if params.Role == RoleDoctor {
		if err := s.repo.SaveProfile(ctx, availability.DefaultProfile(u.ID)); err != nil {
			return nil, fmt.Errorf("save default profile: %w", err)
		}
	}

	return u, nil
}

// Authenticate checks credentials and returns the account. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, u *User) error {
	return s.repo.Update(ctx, u)
}

func (s *Service) ListDoctors(ctx context.Context) ([]User, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) Profile(ctx context.Context, providerID uuid.UUID) (availability.Profile, error) {
	return s.repo.Profile(ctx, providerID)
}

// EditProfile loads the provider's profile, applies one of the pure schedule
// edits, and persists the result. Rejected edits come back from the pure op
// as the unchanged profile, which is saved and returned as-is: the silent
// no-op contract survives the trip through persistence.
func (s *Service) EditProfile(ctx context.Context, providerID uuid.UUID, edit func(availability.Profile) availability.Profile) (availability.Profile, error) {
	profile, err := s.repo.Profile(ctx, providerID)
	if err != nil {
		return availability.Profile{}, err
	}

	updated := edit(profile)
	if err := s.repo.SaveProfile(ctx, updated); err != nil {
		return availability.Profile{}, err
	}
	return updated, nil
}
