// Package audit records who changed what in the schedule pipeline. Every
// reconciliation writes its trail inside the same transaction as the
// schedule change itself.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened.
type Action string

const (
	ActionScheduleUpdated         Action = "schedule_updated"
	ActionAppointmentCancelled    Action = "appointment_cancelled"
	ActionMarkedForRescheduling   Action = "appointment_marked_for_rescheduling"
	ActionConflictPatientNotified Action = "conflict_patient_notified"
)

type Event struct {
	ID         uuid.UUID      `json:"id"`
	Action     Action         `json:"action"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}
