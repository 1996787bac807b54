package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shifa-health/shifa/internal/domain/directory"
)

// Repository is the storage interface for appointments. Mutating calls
// join an ambient transaction when one is carried in the context.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)

	// ListFutureActiveByEntity returns scheduled and confirmed
	// appointments on or after the given date for every doctor under
	// the entity: the user itself, a clinic's users, a complex's
	// clinics, or an organization's whole tree.
	ListFutureActiveByEntity(ctx context.Context, et directory.EntityType, id uuid.UUID, from time.Time) ([]*Appointment, error)

	CancelWithReason(ctx context.Context, id uuid.UUID, reason string) error
	MarkForRescheduling(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}
