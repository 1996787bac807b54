package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Record persists the event, joining an ambient transaction if the
	// context carries one.
	Record(ctx context.Context, e *Event) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Event, int, error)
}
