package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushub/campus-portal-api/internal/models"
)

// PrincipalRepository adapts the six differently-shaped principal tables into
// the single normalized shape the credential resolver works with. Lookups are
// read-only.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new instance of PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Per-variant normalization queries. Each projects (id, email, password_hash,
// display_name, active) regardless of the underlying table shape. An
// institute only counts as active once its registration has been approved.
var principalByEmailQueries = map[models.Role]string{
	models.RoleSuperAdmin: `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM superadmins WHERE LOWER(email) = LOWER($1) LIMIT 1`,
	models.RoleInstitute:  `SELECT id, email, password_hash, name AS display_name, (status = 'Active' AND approval_status = 'Approved') AS active FROM institutes WHERE LOWER(email) = LOWER($1) LIMIT 1`,
	models.RoleCollege:    `SELECT id, email, password_hash, name AS display_name, (status = 'Active') AS active FROM colleges WHERE LOWER(email) = LOWER($1) LIMIT 1`,
	models.RoleDepartment: `SELECT id, email, password_hash, name AS display_name, (status = 'Active') AS active FROM departments WHERE LOWER(email) = LOWER($1) LIMIT 1`,
	models.RoleFaculty:    `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM faculties WHERE LOWER(email) = LOWER($1) LIMIT 1`,
	models.RoleStudent:    `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`,
}

var principalByIDQueries = map[models.Role]string{
	models.RoleSuperAdmin: `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM superadmins WHERE id = $1 LIMIT 1`,
	models.RoleInstitute:  `SELECT id, email, password_hash, name AS display_name, (status = 'Active' AND approval_status = 'Approved') AS active FROM institutes WHERE id = $1 LIMIT 1`,
	models.RoleCollege:    `SELECT id, email, password_hash, name AS display_name, (status = 'Active') AS active FROM colleges WHERE id = $1 LIMIT 1`,
	models.RoleDepartment: `SELECT id, email, password_hash, name AS display_name, (status = 'Active') AS active FROM departments WHERE id = $1 LIMIT 1`,
	models.RoleFaculty:    `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM faculties WHERE id = $1 LIMIT 1`,
	models.RoleStudent:    `SELECT id, email, password_hash, full_name AS display_name, (status = 'Active') AS active FROM students WHERE id = $1 LIMIT 1`,
}

// FindByEmail returns the principal of the given variant matching the login
// identifier, or sql.ErrNoRows when the variant has no such record.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, role models.Role, email string) (*models.Principal, error) {
	query, ok := principalByEmailQueries[role]
	if !ok {
		return nil, fmt.Errorf("unknown principal variant: %s", role)
	}
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by email: %w", role, err)
	}
	p.Role = role
	return &p, nil
}

// FindByID returns the principal of the given variant by identity.
func (r *PrincipalRepository) FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	query, ok := principalByIDQueries[role]
	if !ok {
		return nil, fmt.Errorf("unknown principal variant: %s", role)
	}
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by id: %w", role, err)
	}
	p.Role = role
	return &p, nil
}

// StudentContext resolves the ownership chain around a student: advisor,
// department, owning college (when present) and institute.
func (r *PrincipalRepository) StudentContext(ctx context.Context, studentID string) (*models.StudentContext, error) {
	const query = `SELECT s.id AS student_id, s.department_id, d.college_id,
		COALESCE(d.institute_id, c.institute_id) AS institute_id, s.advisor_id
		FROM students s
		JOIN departments d ON d.id = s.department_id
		LEFT JOIN colleges c ON c.id = d.college_id
		WHERE s.id = $1`
	var sc models.StudentContext
	if err := r.db.GetContext(ctx, &sc, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve student context: %w", err)
	}
	return &sc, nil
}

// GetStudent returns the full student record.
func (r *PrincipalRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, department_id, advisor_id, roll_number, email, password_hash, full_name, enrollment_year, status, created_at, updated_at FROM students WHERE id = $1 LIMIT 1`
	var s models.Student
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &s, nil
}

// CollegeInstitute returns the institute owning a college.
func (r *PrincipalRepository) CollegeInstitute(ctx context.Context, collegeID string) (string, error) {
	const query = `SELECT institute_id FROM colleges WHERE id = $1 LIMIT 1`
	var instituteID string
	if err := r.db.GetContext(ctx, &instituteID, query, collegeID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("resolve college institute: %w", err)
	}
	return instituteID, nil
}
