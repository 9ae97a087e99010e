package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/availability"
	redisclient "github.com/medecho/clinical-scheduling/internal/redis"
	"github.com/medecho/clinical-scheduling/internal/user"
)

type fakeRepo struct {
	mu     sync.Mutex
	appts  map[uuid.UUID]*Appointment
	events []EventLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) FindActiveBySlot(_ context.Context, providerID uuid.UUID, date string, t availability.TimeOfDay) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.ProviderID == providerID && a.VisitDate == date && a.StartTime == t && a.Status != StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) ListByProviderDate(_ context.Context, providerID uuid.UUID, date string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.ProviderID == providerID && a.VisitDate == date {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.ProviderID == providerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindPendingOnDate(_ context.Context, date string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.VisitDate == date && a.Status == StatusPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appts, id)
	return nil
}

func (r *fakeRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type fakeUsers struct {
	users    map[uuid.UUID]*user.User
	profiles map[uuid.UUID]availability.Profile
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:    make(map[uuid.UUID]*user.User),
		profiles: make(map[uuid.UUID]availability.Profile),
	}
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) ListDoctors(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Role == user.RoleDoctor {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Profile(_ context.Context, providerID uuid.UUID) (availability.Profile, error) {
	if p, ok := f.profiles[providerID]; ok {
		return p, nil
	}
	if u, ok := f.users[providerID]; ok && u.Role == user.RoleDoctor {
		return availability.DefaultProfile(providerID), nil
	}
	return availability.Profile{}, user.ErrUserNotFound
}

func (f *fakeUsers) SaveProfile(_ context.Context, p availability.Profile) error {
	f.profiles[p.ProviderID] = p
	return nil
}

// fakeLocker runs the critical section inline; held keys simulate contention.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) WithBookingLock(ctx context.Context, providerID uuid.UUID, date, slot string, fn func(ctx context.Context) error) error {
	key := providerID.String() + ":" + date + ":" + slot
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return redisclient.ErrLockNotAcquired
	}
	l.held[key] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	users      *fakeUsers
	locker     *fakeLocker
	providerID uuid.UUID
	patientID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUsers()
	providerID := uuid.New()
	patientID := uuid.New()
	spec := "Cardiology"
	users.users[providerID] = &user.User{ID: providerID, Name: "Dr. Sarah Wilson", Email: "sarah@clinic.test", Role: user.RoleDoctor, Specialization: &spec}
	users.users[patientID] = &user.User{ID: patientID, Name: "John Doe", Email: "john@clinic.test", Role: user.RolePatient}

	repo := newFakeRepo()
	locker := newFakeLocker()

	return &fixture{
		svc:        NewService(repo, users, locker, zap.NewNop()),
		repo:       repo,
		users:      users,
		locker:     locker,
		providerID: providerID,
		patientID:  patientID,
	}
}

// 2024-06-03 is a Monday, active in the default profile.
const monday = "2024-06-03"

func TestBookSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, availability.NewTimeOfDay(10, 0), ModalityVirtual)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, "Dr. Sarah Wilson", appt.ProviderName)
	assert.Equal(t, "John Doe", appt.PatientName)
	assert.Equal(t, "10:00", appt.StartTime.String())
	require.Len(t, f.repo.events, 1)
	assert.Equal(t, EventAppointmentBooked, f.repo.events[0].EventType)
}

func TestBookTakenSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(10, 0)

	_, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, f.providerID, uuid.New(), monday, slot, ModalityInPerson)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	otherPatient := uuid.New()
	f.users.users[otherPatient] = &user.User{ID: otherPatient, Name: "Jane Smith", Role: user.RolePatient}
	_, err = f.svc.Book(ctx, f.providerID, otherPatient, monday, slot, ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookOutsideSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 08:00 is before the default 09:00-17:00 window.
	_, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, availability.NewTimeOfDay(8, 0), ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// 2024-06-02 is a Sunday, inactive by default.
	_, err = f.svc.Book(ctx, f.providerID, f.patientID, "2024-06-02", availability.NewTimeOfDay(10, 0), ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookBlockedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile := availability.DefaultProfile(f.providerID)
	profile = profile.AddBlockedSlot(availability.BlockedSlot{
		ID:     "b1",
		Date:   monday,
		Reason: "surgery",
		Range:  &availability.WorkingRange{Start: availability.NewTimeOfDay(10, 0), End: availability.NewTimeOfDay(11, 0)},
	})
	f.users.profiles[f.providerID] = profile

	_, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, availability.NewTimeOfDay(10, 30), ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.Book(ctx, f.providerID, f.patientID, monday, availability.NewTimeOfDay(11, 0), ModalityInPerson)
	assert.NoError(t, err, "blackout upper bound is exclusive")
}

func TestBookLockContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(10, 0)

	f.locker.held[f.providerID.String()+":"+monday+":"+slot.String()] = true

	_, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestBookStaleSlotListDefendedAtConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(14, 0)

	// A competing booking lands directly in the repository, simulating a
	// client whose resolved slot list predates it.
	competitor := &Appointment{
		ID:         uuid.New(),
		ProviderID: f.providerID,
		PatientID:  uuid.New(),
		VisitDate:  monday,
		StartTime:  slot,
		Status:     StatusPending,
		Modality:   ModalityInPerson,
	}
	require.NoError(t, f.repo.Create(ctx, competitor))

	_, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCancelledSlotIsRebookable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(10, 0)

	first, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, first.ID, StatusCancelled)
	require.NoError(t, err)

	second, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestChangeStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, availability.NewTimeOfDay(9, 0), ModalityInPerson)
	require.NoError(t, err)

	// PENDING -> COMPLETED -> PENDING (reopen) -> CANCELLED
	updated, err := f.svc.ChangeStatus(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	_, err = f.svc.ChangeStatus(ctx, appt.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "completed may only reopen")

	updated, err = f.svc.ChangeStatus(ctx, appt.ID, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)

	updated, err = f.svc.ChangeStatus(ctx, appt.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
}

func TestReopenCancelledChecksConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(10, 0)

	first, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, first.ID, StatusCancelled)
	require.NoError(t, err)

	// Someone else takes the freed slot.
	otherPatient := uuid.New()
	f.users.users[otherPatient] = &user.User{ID: otherPatient, Name: "Jane Smith", Role: user.RolePatient}
	_, err = f.svc.Book(ctx, f.providerID, otherPatient, monday, slot, ModalityInPerson)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, first.ID, StatusPending)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestDeleteFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := availability.NewTimeOfDay(11, 0)

	appt, err := f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, appt.ID))

	_, err = f.svc.Get(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.svc.Book(ctx, f.providerID, f.patientID, monday, slot, ModalityInPerson)
	assert.NoError(t, err)
}

func TestAvailableSlotsUnknownProvider(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.AvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
