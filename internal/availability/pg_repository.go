package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/medbook/internal/db"
	"github.com/hackgods/medbook/internal/schedule"
)

const availabilityColumns = `id, doctor_id, day_of_week, start_hour, start_minute, end_hour, end_minute,
	is_recurring, COALESCE(recurrence, ''), valid_from, valid_until, created_at, updated_at`

const exceptionColumns = `id, availability_id, exception_date, is_cancelled,
	start_hour, start_minute, end_hour, end_minute, created_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAvailability(row pgx.Row) (*Availability, error) {
	var a Availability
	var dow int

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&dow,
		&a.StartHour,
		&a.StartMinute,
		&a.EndHour,
		&a.EndMinute,
		&a.IsRecurring,
		&a.Recurrence,
		&a.ValidFrom,
		&a.ValidUntil,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	a.DayOfWeek = time.Weekday(dow)
	return &a, nil
}

func scanException(row pgx.Row) (*Exception, error) {
	var e Exception
	var sh, sm, eh, em *int

	err := row.Scan(
		&e.ID,
		&e.AvailabilityID,
		&e.Date,
		&e.IsCancelled,
		&sh,
		&sm,
		&eh,
		&em,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExceptionNotFound
		}
		return nil, err
	}

	if sh != nil && sm != nil && eh != nil && em != nil {
		e.Override = &schedule.Interval{
			Start: schedule.TimeOfDay{Hour: *sh, Minute: *sm},
			End:   schedule.TimeOfDay{Hour: *eh, Minute: *em},
		}
	}
	return &e, nil
}

func nullableRecurrence(r schedule.Recurrence) *string {
	if r == "" {
		return nil
	}
	s := string(r)
	return &s
}

func (r *PgRepository) queryAvailability(ctx context.Context, query string, args ...any) ([]Availability, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Availability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachExceptions(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// attachExceptions loads the exceptions of every row in one query.
func (r *PgRepository) attachExceptions(ctx context.Context, rows []Availability) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i, a := range rows {
		ids[i] = a.ID.String()
		index[a.ID] = i
	}

	exRows, err := r.pool.Query(ctx, `
		SELECT `+exceptionColumns+`
		FROM availability_exceptions
		WHERE availability_id = ANY($1::uuid[])
		ORDER BY exception_date
	`, ids)
	if err != nil {
		return fmt.Errorf("load exceptions: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		e, err := scanException(exRows)
		if err != nil {
			return err
		}
		i := index[e.AvailabilityID]
		rows[i].Exceptions = append(rows[i].Exceptions, *e)
	}
	return exRows.Err()
}

// Interface methods

func (r *PgRepository) DoctorExists(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)`, doctorID).Scan(&exists)
	return exists, err
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*Availability, error) {
	rows, err := r.queryAvailability(ctx, `
		SELECT `+availabilityColumns+`
		FROM doctor_availability
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrAvailabilityNotFound
	}
	return &rows[0], nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Availability, error) {
	return r.queryAvailability(ctx, `
		SELECT `+availabilityColumns+`
		FROM doctor_availability
		WHERE doctor_id = $1
		  AND (valid_until IS NULL OR valid_until >= $2)
		ORDER BY valid_from, start_hour, start_minute
	`, doctorID, schedule.DateOf(from))
}

func (r *PgRepository) ListByDoctors(ctx context.Context, doctorIDs []uuid.UUID) ([]Availability, error) {
	if len(doctorIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(doctorIDs))
	for i, id := range doctorIDs {
		ids[i] = id.String()
	}
	return r.queryAvailability(ctx, `
		SELECT `+availabilityColumns+`
		FROM doctor_availability
		WHERE doctor_id = ANY($1::uuid[])
		ORDER BY doctor_id, start_hour, start_minute, valid_from
	`, ids)
}

func (r *PgRepository) ListOneOffOn(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]Availability, error) {
	return r.queryAvailability(ctx, `
		SELECT `+availabilityColumns+`
		FROM doctor_availability
		WHERE doctor_id = $1
		  AND NOT is_recurring
		  AND valid_from = $2
		ORDER BY start_hour, start_minute
	`, doctorID, schedule.DateOf(day))
}

func (r *PgRepository) Create(ctx context.Context, a Availability) (*Availability, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctor_availability (id, doctor_id, day_of_week, start_hour, start_minute, end_hour, end_minute,
			is_recurring, recurrence, valid_from, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+availabilityColumns,
		a.ID, a.DoctorID, int(a.DayOfWeek), a.StartHour, a.StartMinute, a.EndHour, a.EndMinute,
		a.IsRecurring, nullableRecurrence(a.Recurrence), a.ValidFrom, a.ValidUntil)

	created, err := scanAvailability(row)
	if err != nil {
		return nil, fmt.Errorf("insert availability: %w", err)
	}
	return created, nil
}

func (r *PgRepository) Update(ctx context.Context, a Availability) (*Availability, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctor_availability
		SET day_of_week = $2,
		    start_hour = $3,
		    start_minute = $4,
		    end_hour = $5,
		    end_minute = $6,
		    is_recurring = $7,
		    recurrence = $8,
		    valid_from = $9,
		    valid_until = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+availabilityColumns,
		a.ID, int(a.DayOfWeek), a.StartHour, a.StartMinute, a.EndHour, a.EndMinute,
		a.IsRecurring, nullableRecurrence(a.Recurrence), a.ValidFrom, a.ValidUntil)

	updated, err := scanAvailability(row)
	if err != nil {
		return nil, err
	}
	rows := []Availability{*updated}
	if err := r.attachExceptions(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctor_availability WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAvailabilityNotFound
	}
	return nil
}

func (r *PgRepository) CreateException(ctx context.Context, e Exception) (*Exception, error) {
	var sh, sm, eh, em *int
	if e.Override != nil {
		sh, sm = &e.Override.Start.Hour, &e.Override.Start.Minute
		eh, em = &e.Override.End.Hour, &e.Override.End.Minute
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_exceptions (id, availability_id, exception_date, is_cancelled,
			start_hour, start_minute, end_hour, end_minute, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING `+exceptionColumns,
		e.ID, e.AvailabilityID, e.Date, e.IsCancelled, sh, sm, eh, em)

	created, err := scanException(row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrExceptionExists
		}
		return nil, fmt.Errorf("insert exception: %w", err)
	}
	return created, nil
}

func (r *PgRepository) DeleteException(ctx context.Context, availabilityID, exceptionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_exceptions
		WHERE id = $1 AND availability_id = $2
	`, exceptionID, availabilityID)
	if err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExceptionNotFound
	}
	return nil
}
