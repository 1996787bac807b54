// Package directory holds the organizational hierarchy: organizations
// own complexes, complexes own clinics, clinics employ users. Working
// hours attach to any of the four levels.
package directory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies a level of the hierarchy.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityComplex      EntityType = "complex"
	EntityClinic       EntityType = "clinic"
	EntityUser         EntityType = "user"
)

// ParseEntityType validates a path or query parameter.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityOrganization, EntityComplex, EntityClinic, EntityUser:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// ParentRef points at the entity directly above another in the
// hierarchy.
type ParentRef struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
}

type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"name_ar"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Complex struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	NameAr         string    `json:"name_ar"`
	City           *string   `json:"city,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Clinic struct {
	ID        uuid.UUID `json:"id"`
	ComplexID uuid.UUID `json:"complex_id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"name_ar"`
	Specialty *string   `json:"specialty,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a staff member, typically a doctor. ClinicID is nil while the
// user is not yet assigned to a clinic.
type User struct {
	ID        uuid.UUID  `json:"id"`
	ClinicID  *uuid.UUID `json:"clinic_id,omitempty"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Language  string     `json:"language"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
