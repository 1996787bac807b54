package workinghours

import (
	"context"

	"github.com/google/uuid"

	"github.com/shifa-health/shifa/internal/domain/directory"
)

type Repository interface {
	// GetForEntity returns the stored schedule sorted in week order,
	// Saturday first. An entity with no schedule yields an empty slice.
	GetForEntity(ctx context.Context, et directory.EntityType, id uuid.UUID) ([]StoredEntry, error)

	// ReplaceForEntity replaces the entity's schedule wholesale:
	// delete every row, then insert the new set. It joins an ambient
	// transaction when the context carries one.
	ReplaceForEntity(ctx context.Context, et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) ([]StoredEntry, error)
}
