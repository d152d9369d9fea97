package appointment

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

const doctorStartKey = "appointments_doctor_start_key"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	return &a, nil
}

func (r *PgRepository) exists(ctx context.Context, query string, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Interface methods

func (r *PgRepository) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)`, id)
}

func (r *PgRepository) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindAtStart(ctx context.Context, doctorID uuid.UUID, start time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, notes, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND start_time = $2
	`, doctorID, start)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, doctor_id, patient_id, start_time, end_time, status, notes, created_at, updated_at
	`, a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, a.Status, a.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		if db.IsUniqueViolation(err, doctorStartKey) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListAppointments(ctx context.Context, f ListFilter) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.start_time, a.end_time, a.status, a.notes,
		       a.created_at, a.updated_at, d.name, d.specialty, p.name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE ($1 OR a.start_time >= $2)
		  AND ($3::uuid IS NULL OR a.doctor_id = $3)
		  AND ($4::uuid IS NULL OR a.patient_id = $4)
		ORDER BY a.start_time, a.id
	`, f.IncludePast, f.Now, f.DoctorID, f.PatientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		err := rows.Scan(
			&d.ID,
			&d.DoctorID,
			&d.PatientID,
			&d.StartTime,
			&d.EndTime,
			&d.Status,
			&d.Notes,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.DoctorName,
			&d.DoctorSpecialty,
			&d.PatientName,
		)
		if err != nil {
			return nil, err
		}
		d.StartTime = d.StartTime.UTC()
		d.EndTime = d.EndTime.UTC()
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *PgRepository) StartTimesBetween(ctx context.Context, doctorIDs []uuid.UUID, from, until time.Time) (map[uuid.UUID][]time.Time, error) {
	result := make(map[uuid.UUID][]time.Time, len(doctorIDs))
	if len(doctorIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(doctorIDs))
	for i, id := range doctorIDs {
		ids[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, start_time
		FROM appointments
		WHERE doctor_id = ANY($1::uuid[])
		  AND start_time >= $2
		  AND start_time < $3
	`, ids, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var doctorID uuid.UUID
		var start time.Time
		if err := rows.Scan(&doctorID, &start); err != nil {
			return nil, err
		}
		result[doctorID] = append(result[doctorID], start.UTC())
	}
	return result, rows.Err()
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
