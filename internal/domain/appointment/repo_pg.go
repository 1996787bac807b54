package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shifa-health/shifa/internal/domain/directory"
	"github.com/shifa-health/shifa/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, doctor_id, patient_name, patient_phone, patient_language,
	service_name, appointment_date, appointment_time, status,
	cancellation_reason, marked_for_rescheduling_at, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientName, &a.PatientPhone, &a.PatientLanguage,
		&a.ServiceName, &a.AppointmentDate, &a.AppointmentTime, &a.Status,
		&a.CancellationReason, &a.MarkedForReschedulingAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.PatientLanguage == "" {
		a.PatientLanguage = "ar"
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_name, patient_phone, patient_language,
			service_name, appointment_date, appointment_time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.DoctorID, a.PatientName, a.PatientPhone, a.PatientLanguage,
		a.ServiceName, a.AppointmentDate, a.AppointmentTime, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments WHERE doctor_id = $1
		ORDER BY appointment_date, appointment_time LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// doctorFilters narrows appointments to the doctors under each level of
// the hierarchy.
var doctorFilters = map[directory.EntityType]string{
	directory.EntityUser: `doctor_id = $1`,
	directory.EntityClinic: `doctor_id IN (
		SELECT id FROM users WHERE clinic_id = $1)`,
	directory.EntityComplex: `doctor_id IN (
		SELECT u.id FROM users u
		JOIN clinics c ON c.id = u.clinic_id
		WHERE c.complex_id = $1)`,
	directory.EntityOrganization: `doctor_id IN (
		SELECT u.id FROM users u
		JOIN clinics c ON c.id = u.clinic_id
		JOIN complexes cx ON cx.id = c.complex_id
		WHERE cx.organization_id = $1)`,
}

func (r *repoPG) ListFutureActiveByEntity(ctx context.Context, et directory.EntityType, id uuid.UUID, from time.Time) ([]*Appointment, error) {
	filter, ok := doctorFilters[et]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", et)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE `+filter+` AND appointment_date >= $2 AND status IN ('scheduled', 'confirmed')
		ORDER BY appointment_date, appointment_time`, id, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) CancelWithReason(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status = 'cancelled', cancellation_reason = $2, updated_at = NOW()
		WHERE id = $1`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) MarkForRescheduling(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status = 'cancelled', cancellation_reason = $2,
			marked_for_rescheduling_at = $3, updated_at = NOW()
		WHERE id = $1`, id, reason, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
