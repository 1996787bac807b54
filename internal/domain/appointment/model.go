// Package appointment manages patient bookings against doctors and the
// queries the schedule reconciliation pipeline runs over them.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the appointment still occupies a slot. Only
// scheduled and confirmed bookings count against working hours.
func (s Status) Active() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

type Appointment struct {
	ID                      uuid.UUID  `json:"id"`
	DoctorID                uuid.UUID  `json:"doctor_id"`
	PatientName             string     `json:"patient_name"`
	PatientPhone            string     `json:"patient_phone"`
	PatientLanguage         string     `json:"patient_language"`
	ServiceName             string     `json:"service_name"`
	AppointmentDate         time.Time  `json:"appointment_date"`
	AppointmentTime         string     `json:"appointment_time"`
	Status                  Status     `json:"status"`
	CancellationReason      *string    `json:"cancellation_reason,omitempty"`
	MarkedForReschedulingAt *time.Time `json:"marked_for_rescheduling_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}
