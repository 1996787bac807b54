package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// Service wraps the directory repositories with validation.
type Service struct {
	orgs      OrganizationRepository
	complexes ComplexRepository
	clinics   ClinicRepository
	users     UserRepository
	resolver  *Resolver
}

func NewService(orgs OrganizationRepository, complexes ComplexRepository, clinics ClinicRepository, users UserRepository) *Service {
	return &Service{
		orgs:      orgs,
		complexes: complexes,
		clinics:   clinics,
		users:     users,
		resolver:  NewResolver(orgs, complexes, clinics, users),
	}
}

// Resolver exposes the parent resolver for the working-hours service.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) CreateOrganization(ctx context.Context, o *Organization) error {
	if o.Name == "" {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "اسم المنشأة مطلوب",
			En: "organization name is required",
		})
	}
	return s.orgs.Create(ctx, o)
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	o, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(EntityOrganization, id, err)
	}
	return o, nil
}

func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	return s.orgs.List(ctx, limit, offset)
}

func (s *Service) CreateComplex(ctx context.Context, cx *Complex) error {
	if cx.Name == "" {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "اسم المجمع مطلوب",
			En: "complex name is required",
		})
	}
	if _, err := s.orgs.GetByID(ctx, cx.OrganizationID); err != nil {
		return notFound(EntityOrganization, cx.OrganizationID, err)
	}
	return s.complexes.Create(ctx, cx)
}

func (s *Service) GetComplex(ctx context.Context, id uuid.UUID) (*Complex, error) {
	cx, err := s.complexes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(EntityComplex, id, err)
	}
	return cx, nil
}

func (s *Service) ListComplexes(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Complex, int, error) {
	return s.complexes.ListByOrganization(ctx, orgID, limit, offset)
}

func (s *Service) CreateClinic(ctx context.Context, cl *Clinic) error {
	if cl.Name == "" {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "اسم العيادة مطلوب",
			En: "clinic name is required",
		})
	}
	if _, err := s.complexes.GetByID(ctx, cl.ComplexID); err != nil {
		return notFound(EntityComplex, cl.ComplexID, err)
	}
	return s.clinics.Create(ctx, cl)
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	cl, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(EntityClinic, id, err)
	}
	return cl, nil
}

func (s *Service) ListClinics(ctx context.Context, complexID uuid.UUID, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.ListByComplex(ctx, complexID, limit, offset)
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if u.FullName == "" {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "اسم المستخدم مطلوب",
			En: "user full name is required",
		})
	}
	if u.ClinicID != nil {
		if _, err := s.clinics.GetByID(ctx, *u.ClinicID); err != nil {
			return notFound(EntityClinic, *u.ClinicID, err)
		}
	}
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(EntityUser, id, err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListByClinic(ctx, clinicID, limit, offset)
}

// AssignUserClinic moves a user into a clinic, or out of every clinic
// when clinicID is nil.
func (s *Service) AssignUserClinic(ctx context.Context, userID uuid.UUID, clinicID *uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return notFound(EntityUser, userID, err)
	}
	if clinicID != nil {
		if _, err := s.clinics.GetByID(ctx, *clinicID); err != nil {
			return notFound(EntityClinic, *clinicID, err)
		}
	}
	return s.users.AssignClinic(ctx, userID, clinicID)
}

// EntityExists reports whether the entity is present, without loading
// its parent chain.
func (s *Service) EntityExists(ctx context.Context, et EntityType, id uuid.UUID) error {
	var err error
	switch et {
	case EntityOrganization:
		_, err = s.orgs.GetByID(ctx, id)
	case EntityComplex:
		_, err = s.complexes.GetByID(ctx, id)
	case EntityClinic:
		_, err = s.clinics.GetByID(ctx, id)
	case EntityUser:
		_, err = s.users.GetByID(ctx, id)
	default:
		return apperr.New(apperr.CodeBadRequest, i18n.Msgf(
			"نوع الكيان غير معروف: %s",
			"unknown entity type: %s",
			et,
		))
	}
	if err != nil {
		return notFound(et, id, err)
	}
	return nil
}
