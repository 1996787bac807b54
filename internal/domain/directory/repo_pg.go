package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shifa-health/shifa/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Organization Repository ===========

type organizationRepoPG struct{ pool *pgxpool.Pool }

func NewOrganizationRepoPG(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepoPG{pool: pool}
}

func (r *organizationRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const orgCols = `id, name, name_ar, phone, email, active, created_at, updated_at`

func scanOrganization(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.NameAr, &o.Phone, &o.Email, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *organizationRepoPG) Create(ctx context.Context, o *Organization) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO organizations (id, name, name_ar, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.Name, o.NameAr, o.Phone, o.Email, o.Active)
	return err
}

func (r *organizationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return scanOrganization(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organizations WHERE id = $1`, id))
}

func (r *organizationRepoPG) List(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orgCols+` FROM organizations ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// =========== Complex Repository ===========

type complexRepoPG struct{ pool *pgxpool.Pool }

func NewComplexRepoPG(pool *pgxpool.Pool) ComplexRepository {
	return &complexRepoPG{pool: pool}
}

func (r *complexRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const complexCols = `id, organization_id, name, name_ar, city, active, created_at, updated_at`

func scanComplex(row pgx.Row) (*Complex, error) {
	var cx Complex
	err := row.Scan(&cx.ID, &cx.OrganizationID, &cx.Name, &cx.NameAr, &cx.City, &cx.Active, &cx.CreatedAt, &cx.UpdatedAt)
	return &cx, err
}

func (r *complexRepoPG) Create(ctx context.Context, cx *Complex) error {
	cx.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO complexes (id, organization_id, name, name_ar, city, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cx.ID, cx.OrganizationID, cx.Name, cx.NameAr, cx.City, cx.Active)
	return err
}

func (r *complexRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Complex, error) {
	return scanComplex(r.conn(ctx).QueryRow(ctx,
		`SELECT `+complexCols+` FROM complexes WHERE id = $1`, id))
}

func (r *complexRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Complex, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM complexes WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+complexCols+` FROM complexes WHERE organization_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Complex
	for rows.Next() {
		cx, err := scanComplex(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cx)
	}
	return out, total, rows.Err()
}

// =========== Clinic Repository ===========

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository {
	return &clinicRepoPG{pool: pool}
}

func (r *clinicRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const clinicCols = `id, complex_id, name, name_ar, specialty, active, created_at, updated_at`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var cl Clinic
	err := row.Scan(&cl.ID, &cl.ComplexID, &cl.Name, &cl.NameAr, &cl.Specialty, &cl.Active, &cl.CreatedAt, &cl.UpdatedAt)
	return &cl, err
}

func (r *clinicRepoPG) Create(ctx context.Context, cl *Clinic) error {
	cl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinics (id, complex_id, name, name_ar, specialty, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cl.ID, cl.ComplexID, cl.Name, cl.NameAr, cl.Specialty, cl.Active)
	return err
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return scanClinic(r.conn(ctx).QueryRow(ctx,
		`SELECT `+clinicCols+` FROM clinics WHERE id = $1`, id))
}

func (r *clinicRepoPG) ListByComplex(ctx context.Context, complexID uuid.UUID, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinics WHERE complex_id = $1`, complexID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+clinicCols+` FROM clinics WHERE complex_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		complexID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Clinic
	for rows.Next() {
		cl, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cl)
	}
	return out, total, rows.Err()
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, clinic_id, full_name, role, phone, email, language, active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.ClinicID, &u.FullName, &u.Role, &u.Phone, &u.Email, &u.Language, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	if u.Language == "" {
		u.Language = "ar"
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, clinic_id, full_name, role, phone, email, language, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.ClinicID, u.FullName, u.Role, u.Phone, u.Email, u.Language, u.Active)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE clinic_id = $1`, clinicID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users WHERE clinic_id = $1 ORDER BY full_name LIMIT $2 OFFSET $3`,
		clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *userRepoPG) AssignClinic(ctx context.Context, userID uuid.UUID, clinicID *uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET clinic_id = $2, updated_at = NOW() WHERE id = $1`, userID, clinicID)
	return err
}
