package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/medecho/clinical-scheduling/internal/availability"
	"github.com/medecho/clinical-scheduling/internal/db"
	"github.com/medecho/clinical-scheduling/internal/user"
)

// All seeded accounts share this password so the API is easy to poke at.
const seedPassword = "password123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	doctors, err := seedDoctors(context.Background(), pool, string(hash), 25)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, string(hash), 500)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctors, patients, 200); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		contact := gofakeit.Phone()

		profile := availability.DefaultProfile(id)
		schedulesRaw, err := json.Marshal(profile.Schedules)
		if err != nil {
			return nil, err
		}
		blockedRaw, err := json.Marshal(profile.BlockedSlots)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role, specialization, contact, is_available, day_schedules, blocked_slots, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $9, now(), now())
		`, id, name, gofakeit.Email(), passwordHash, user.RoleDoctor, spec, contact, schedulesRaw, blockedRaw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 100

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, password_hash, role, contact, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			`, id, gofakeit.Name(), gofakeit.Email(), passwordHash, user.RolePatient, gofakeit.Phone())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return ids, nil
}

// seedAppointments books pending visits over the next week, skipping slot
// collisions instead of retrying so the run stays deterministic in length.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors, patients []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	modalities := []string{"VIRTUAL", "IN_PERSON"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i := 0; i < count; i++ {
		providerID := doctors[gofakeit.Number(0, len(doctors)-1)]
		patientID := patients[gofakeit.Number(0, len(patients)-1)]

		date := time.Now().UTC().AddDate(0, 0, gofakeit.Number(1, 7)).Format("2006-01-02")
		slot := availability.NewTimeOfDay(gofakeit.Number(9, 16), 30*gofakeit.Number(0, 1))

		tag, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, provider_id, patient_id, provider_name, patient_name, visit_date, start_time, status, modality, created_at, updated_at)
			SELECT $1, d.id, p.id, d.name, p.name, $4, $5, 'PENDING', $6, now(), now()
			FROM users d, users p
			WHERE d.id = $2 AND p.id = $3
			ON CONFLICT DO NOTHING
		`, uuid.New(), providerID, patientID, date, slot.String(), modalities[gofakeit.Number(0, 1)])
		if err != nil {
			return err
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("appointments seeded: %d (collisions skipped: %d)", inserted, count-inserted)
	return nil
}
