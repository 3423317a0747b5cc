package models

import "time"

// Role identifies which of the six principal collections a login resolved to.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleInstitute  Role = "institute"
	RoleCollege    Role = "college"
	RoleDepartment Role = "department"
	RoleFaculty    Role = "faculty"
	RoleStudent    Role = "student"
)

// VariantOrder fixes the credential resolution priority. When the same email
// exists in more than one collection the most senior variant wins, so the
// order here is load-bearing and covered by tests.
var VariantOrder = []Role{
	RoleSuperAdmin,
	RoleInstitute,
	RoleCollege,
	RoleDepartment,
	RoleFaculty,
	RoleStudent,
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleInstitute, RoleCollege, RoleDepartment, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// ReviewerRoles are the roles allowed to transition an achievement out of Pending.
var ReviewerRoles = []Role{RoleFaculty, RoleInstitute, RoleSuperAdmin}

// LifecycleStatus marks whether a principal may authenticate.
type LifecycleStatus string

const (
	StatusActive   LifecycleStatus = "Active"
	StatusInactive LifecycleStatus = "Inactive"
)

// Principal is the normalized shape every variant collapses into for
// credential resolution. It is never persisted as-is.
type Principal struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	DisplayName  string `db:"display_name"`
	Role         Role   `db:"-"`
	Active       bool   `db:"active"`
}

// SuperAdmin is a platform administrator.
type SuperAdmin struct {
	ID           string          `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	FullName     string          `db:"full_name" json:"full_name"`
	Status       LifecycleStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Institute is the root tenant of the hierarchy. Unlike the other principals
// it carries its own approval workflow: registration requests start Pending
// and only a superadmin decision activates the account.
type Institute struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Code           string          `db:"code" json:"code"`
	Email          string          `db:"email" json:"email"`
	PasswordHash   string          `db:"password_hash" json:"-"`
	ContactNumber  string          `db:"contact_number" json:"contact_number"`
	Website        string          `db:"website" json:"website"`
	HeadName       string          `db:"head_name" json:"head_name"`
	HeadEmail      string          `db:"head_email" json:"head_email"`
	ApprovalStatus ReviewStatus    `db:"approval_status" json:"approval_status"`
	ReviewComment  string          `db:"review_comment" json:"review_comment"`
	ReviewedBy     *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Status         LifecycleStatus `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// College belongs to exactly one institute.
type College struct {
	ID           string          `db:"id" json:"id"`
	InstituteID  string          `db:"institute_id" json:"institute_id"`
	Name         string          `db:"name" json:"name"`
	Code         string          `db:"code" json:"code"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Status       LifecycleStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Department belongs to one college, or hangs directly off an institute for
// standalone campuses. Exactly one of CollegeID/InstituteID is set.
type Department struct {
	ID           string          `db:"id" json:"id"`
	CollegeID    *string         `db:"college_id" json:"college_id,omitempty"`
	InstituteID  *string         `db:"institute_id" json:"institute_id,omitempty"`
	Name         string          `db:"name" json:"name"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Status       LifecycleStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Faculty belongs to one department and advises a subset of its students.
type Faculty struct {
	ID           string          `db:"id" json:"id"`
	DepartmentID string          `db:"department_id" json:"department_id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	FullName     string          `db:"full_name" json:"full_name"`
	Designation  string          `db:"designation" json:"designation"`
	Status       LifecycleStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Student belongs to one department; AdvisorID references the faculty member
// responsible for reviewing the student's achievements.
type Student struct {
	ID             string          `db:"id" json:"id"`
	DepartmentID   string          `db:"department_id" json:"department_id"`
	AdvisorID      *string         `db:"advisor_id" json:"advisor_id,omitempty"`
	RollNumber     string          `db:"roll_number" json:"roll_number"`
	Email          string          `db:"email" json:"email"`
	PasswordHash   string          `db:"password_hash" json:"-"`
	FullName       string          `db:"full_name" json:"full_name"`
	EnrollmentYear int             `db:"enrollment_year" json:"enrollment_year"`
	Status         LifecycleStatus `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// StudentContext is the slice of the ownership relation needed for
// supervisory access decisions: who advises the student and which
// department/college/institute contain it.
type StudentContext struct {
	StudentID    string  `db:"student_id"`
	DepartmentID string  `db:"department_id"`
	CollegeID    *string `db:"college_id"`
	InstituteID  string  `db:"institute_id"`
	AdvisorID    *string `db:"advisor_id"`
}
