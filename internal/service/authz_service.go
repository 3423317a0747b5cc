package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type ownershipRepository interface {
	StudentContext(ctx context.Context, studentID string) (*models.StudentContext, error)
}

// AuthzService decides supervisory access by walking the ownership relation:
// institute → college → department → faculty → advisee student.
type AuthzService struct {
	repo   ownershipRepository
	logger *zap.Logger
}

// NewAuthzService constructs an AuthzService instance.
func NewAuthzService(repo ownershipRepository, logger *zap.Logger) *AuthzService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthzService{repo: repo, logger: logger}
}

// CanAccessStudent authorizes read access to a student-owned resource: the
// student itself, its advisor, and every principal above it in the hierarchy.
// Violations are forbidden, not not-found; the student's existence is already
// known to anyone holding a valid reference.
func (s *AuthzService) CanAccessStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleSuperAdmin {
		return nil
	}
	if claims.Role == models.RoleStudent {
		if claims.PrincipalID == studentID {
			return nil
		}
		return appErrors.ErrForbidden
	}

	sc, err := s.repo.StudentContext(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve ownership")
	}

	switch claims.Role {
	case models.RoleFaculty:
		if sc.AdvisorID != nil && *sc.AdvisorID == claims.PrincipalID {
			return nil
		}
	case models.RoleDepartment:
		if sc.DepartmentID == claims.PrincipalID {
			return nil
		}
	case models.RoleCollege:
		if sc.CollegeID != nil && *sc.CollegeID == claims.PrincipalID {
			return nil
		}
	case models.RoleInstitute:
		if sc.InstituteID == claims.PrincipalID {
			return nil
		}
	}

	return appErrors.ErrForbidden
}

// CanReviewStudent authorizes a review decision on an achievement owned by
// the student. Only the advisor faculty, the owning institute and superadmins
// may transition the workflow.
func (s *AuthzService) CanReviewStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}

	switch claims.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleFaculty, models.RoleInstitute:
		// resolved below
	default:
		return appErrors.ErrForbidden
	}

	sc, err := s.repo.StudentContext(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve ownership")
	}

	if claims.Role == models.RoleFaculty {
		if sc.AdvisorID != nil && *sc.AdvisorID == claims.PrincipalID {
			return nil
		}
		return appErrors.ErrForbidden
	}

	if sc.InstituteID == claims.PrincipalID {
		return nil
	}
	return appErrors.ErrForbidden
}
