package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

type memRepo struct {
	users    map[uuid.UUID]*User
	profiles map[uuid.UUID]availability.Profile
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    make(map[uuid.UUID]*User),
		profiles: make(map[uuid.UUID]availability.Profile),
	}
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memRepo) ListDoctors(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Role == RoleDoctor {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memRepo) Profile(_ context.Context, providerID uuid.UUID) (availability.Profile, error) {
	if p, ok := m.profiles[providerID]; ok {
		return p, nil
	}
	if u, ok := m.users[providerID]; ok && u.Role == RoleDoctor {
		return availability.DefaultProfile(providerID), nil
	}
	return availability.Profile{}, ErrUserNotFound
}

func (m *memRepo) SaveProfile(_ context.Context, p availability.Profile) error {
	m.profiles[p.ProviderID] = p
	return nil
}

func TestRegisterDoctor(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	spec := "Neurology"
	u, err := svc.Register(ctx, RegisterParams{
		Name:           "Dr. James Miller",
		Email:          "james@clinic.test",
		Password:       "hunter2-but-longer",
		Role:           RoleDoctor,
		Specialization: &spec,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2-but-longer", u.PasswordHash, "password must be hashed")
	require.NotNil(t, u.IsAvailable)
	assert.True(t, *u.IsAvailable)

	profile, ok := repo.profiles[u.ID]
	require.True(t, ok, "doctor registration persists a default profile")
	assert.Len(t, profile.Schedules, 7)

	_, err = svc.Register(ctx, RegisterParams{Name: "Dup", Email: "james@clinic.test", Password: "x", Role: RolePatient})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Name: "John Doe", Email: "john@clinic.test", Password: "correct horse", Role: RolePatient})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "john@clinic.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.Name)

	_, err = svc.Authenticate(ctx, "john@clinic.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@clinic.test", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEditProfilePersistsPureEdit(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	doc, err := svc.Register(ctx, RegisterParams{Name: "Dr. A", Email: "a@clinic.test", Password: "pw-pw-pw", Role: RoleDoctor})
	require.NoError(t, err)

	updated, err := svc.EditProfile(ctx, doc.ID, func(p availability.Profile) availability.Profile {
		return p.SetDayActive(6, true)
	})
	require.NoError(t, err)

	sat, _ := updated.Schedule(6)
	assert.True(t, sat.IsActive)

	stored, _ := repo.profiles[doc.ID]
	satStored, _ := stored.Schedule(6)
	assert.True(t, satStored.IsActive)

	// A rejected edit round-trips unchanged.
	same, err := svc.EditProfile(ctx, doc.ID, func(p availability.Profile) availability.Profile {
		return p.RemoveRange(1, 0)
	})
	require.NoError(t, err)
	day, _ := same.Schedule(1)
	assert.Len(t, day.Ranges, 1)
}
