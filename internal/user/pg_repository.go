package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, avatar, specialization, contact, preferred_language, is_available, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Avatar,
		&u.Specialization,
		&u.Contact,
		&u.PreferredLanguage,
		&u.IsAvailable,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *PgRepository) Create(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, avatar, specialization, contact, preferred_language, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Avatar, u.Specialization, u.Contact, u.PreferredLanguage, u.IsAvailable)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgRepository) Update(ctx context.Context, u *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, avatar = $3, specialization = $4, contact = $5, preferred_language = $6, is_available = $7, updated_at = now()
		WHERE id = $1
	`, u.ID, u.Name, u.Avatar, u.Specialization, u.Contact, u.PreferredLanguage, u.IsAvailable)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY name
	`, RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *u)
	}
	return doctors, rows.Err()
}

// Profile loads a doctor's availability aggregate. Doctors that never edited
// their schedule have NULL columns and fall back to the default template.
func (r *PgRepository) Profile(ctx context.Context, providerID uuid.UUID) (availability.Profile, error) {
	var schedulesRaw, blockedRaw []byte

	err := r.pool.QueryRow(ctx, `
		SELECT day_schedules, blocked_slots
		FROM users
		WHERE id = $1 AND role = $2
	`, providerID, RoleDoctor).Scan(&schedulesRaw, &blockedRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return availability.Profile{}, ErrUserNotFound
		}
		return availability.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	profile := availability.DefaultProfile(providerID)
	if schedulesRaw != nil {
		if err := json.Unmarshal(schedulesRaw, &profile.Schedules); err != nil {
			return availability.Profile{}, fmt.Errorf("decode day schedules: %w", err)
		}
	}
	if blockedRaw != nil {
		if err := json.Unmarshal(blockedRaw, &profile.BlockedSlots); err != nil {
			return availability.Profile{}, fmt.Errorf("decode blocked slots: %w", err)
		}
	}
	return profile, nil
}

func (r *PgRepository) SaveProfile(ctx context.Context, profile availability.Profile) error {
	schedulesRaw, err := json.Marshal(profile.Schedules)
	if err != nil {
		return fmt.Errorf("encode day schedules: %w", err)
	}
	blockedRaw, err := json.Marshal(profile.BlockedSlots)
	if err != nil {
		return fmt.Errorf("encode blocked slots: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET day_schedules = $2, blocked_slots = $3, updated_at = now()
		WHERE id = $1 AND role = $4
	`, profile.ProviderID, schedulesRaw, blockedRaw, RoleDoctor)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
