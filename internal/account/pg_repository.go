package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/medbook/internal/db"
)

const usersLoginIDKey = "users_login_id_key"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.LoginID,
		&u.PasswordHash,
		&u.Role,
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

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Email,
		&d.Phone,
		&d.Gender,
		&d.Specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Gender,
		&p.DateOfBirth,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func insertUser(ctx context.Context, tx pgx.Tx, u User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, login_id, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, u.ID, u.LoginID, u.PasswordHash, u.Role)
	if db.IsUniqueViolation(err, usersLoginIDKey) {
		return ErrLoginTaken
	}
	return err
}

// Interface methods

func (r *PgRepository) CreateDoctor(ctx context.Context, u User, d Doctor) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, user_id, name, email, phone, gender, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`, d.ID, u.ID, d.Name, d.Email, d.Phone, d.Gender, d.Specialty)
		return err
	})
	if err != nil && !errors.Is(err, ErrLoginTaken) {
		return fmt.Errorf("create doctor: %w", err)
	}
	return err
}

func (r *PgRepository) CreatePatient(ctx context.Context, u User, p Patient) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, user_id, name, email, phone, gender, date_of_birth, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`, p.ID, u.ID, p.Name, p.Email, p.Phone, p.Gender, p.DateOfBirth, p.Address)
		return err
	})
	if err != nil && !errors.Is(err, ErrLoginTaken) {
		return fmt.Errorf("create patient: %w", err)
	}
	return err
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, login_id, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) GetUserByLoginID(ctx context.Context, loginID string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, login_id, password_hash, role, created_at, updated_at
		FROM users
		WHERE login_id = $1
	`, loginID)
	return scanUser(row)
}

func (r *PgRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2,
		    updated_at = now()
		WHERE id = $1
	`, userID, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone, gender, specialty, created_at, updated_at
		FROM doctors
		WHERE user_id = $1
	`, userID)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone, gender, date_of_birth, address, created_at, updated_at
		FROM patients
		WHERE user_id = $1
	`, userID)
	return scanPatient(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context, specialty string) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, email, phone, gender, specialty, created_at, updated_at
		FROM doctors
		WHERE $1 = '' OR specialty = $1
		ORDER BY name, id
	`, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Upcoming, error) {
	return r.upcoming(ctx, `
		SELECT a.id, a.start_time, a.end_time, a.notes, p.id, p.name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND a.start_time >= $2
		ORDER BY a.start_time
	`, doctorID, from)
}

func (r *PgRepository) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, from time.Time) ([]Upcoming, error) {
	return r.upcoming(ctx, `
		SELECT a.id, a.start_time, a.end_time, a.notes, d.id, d.name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1 AND a.start_time >= $2
		ORDER BY a.start_time
	`, patientID, from)
}

func (r *PgRepository) upcoming(ctx context.Context, query string, id uuid.UUID, from time.Time) ([]Upcoming, error) {
	rows, err := r.pool.Query(ctx, query, id, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Upcoming
	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.AppointmentID, &u.StartTime, &u.EndTime, &u.Notes, &u.WithID, &u.WithName); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
