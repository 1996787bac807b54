package directory

import (
	"context"

	"github.com/google/uuid"
)

type OrganizationRepository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	List(ctx context.Context, limit, offset int) ([]*Organization, int, error)
}

type ComplexRepository interface {
	Create(ctx context.Context, cx *Complex) error
	GetByID(ctx context.Context, id uuid.UUID) (*Complex, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Complex, int, error)
}

type ClinicRepository interface {
	Create(ctx context.Context, cl *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	ListByComplex(ctx context.Context, complexID uuid.UUID, limit, offset int) ([]*Clinic, int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*User, int, error)
	AssignClinic(ctx context.Context, userID uuid.UUID, clinicID *uuid.UUID) error
}
