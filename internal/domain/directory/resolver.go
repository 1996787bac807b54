package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// Resolver answers "who is the parent of this entity". Organizations
// are roots and resolve to nil; a user without a clinic assignment also
// resolves to nil.
type Resolver struct {
	orgs      OrganizationRepository
	complexes ComplexRepository
	clinics   ClinicRepository
	users     UserRepository
}

func NewResolver(orgs OrganizationRepository, complexes ComplexRepository, clinics ClinicRepository, users UserRepository) *Resolver {
	return &Resolver{orgs: orgs, complexes: complexes, clinics: clinics, users: users}
}

// ResolveParent loads the entity to prove it exists, then follows its
// upward edge. A missing entity maps to a not-found error; a root or an
// unassigned user returns (nil, nil).
func (r *Resolver) ResolveParent(ctx context.Context, et EntityType, id uuid.UUID) (*ParentRef, error) {
	switch et {
	case EntityOrganization:
		if _, err := r.orgs.GetByID(ctx, id); err != nil {
			return nil, notFound(et, id, err)
		}
		return nil, nil

	case EntityComplex:
		cx, err := r.complexes.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(et, id, err)
		}
		return &ParentRef{EntityType: EntityOrganization, EntityID: cx.OrganizationID}, nil

	case EntityClinic:
		cl, err := r.clinics.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(et, id, err)
		}
		return &ParentRef{EntityType: EntityComplex, EntityID: cl.ComplexID}, nil

	case EntityUser:
		u, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(et, id, err)
		}
		if u.ClinicID == nil {
			return nil, nil
		}
		return &ParentRef{EntityType: EntityClinic, EntityID: *u.ClinicID}, nil
	}

	return nil, apperr.New(apperr.CodeBadRequest, i18n.Msgf(
		"نوع الكيان غير معروف: %s",
		"unknown entity type: %s",
		et,
	))
}

func notFound(et EntityType, id uuid.UUID, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(string(et), id.String())
	}
	return fmt.Errorf("load %s %s: %w", et, id, err)
}
