package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type principalRepository interface {
	FindByEmail(ctx context.Context, role models.Role, email string) (*models.Principal, error)
	FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error)
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService resolves credentials against the six principal variants and
// issues/verifies the stateless session token. It keeps no per-session state:
// everything a request needs lives in the signed claims.
type AuthService struct {
	repo      principalRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo principalRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, audit: audit, validator: validate, logger: logger, config: config}
}

// Authenticate resolves a credential pair against the variant collections in
// priority order. The first variant holding the email wins outright: a wrong
// password there fails the whole login rather than falling through to a
// lower-priority variant with the same email. Identifier-not-found and
// password-mismatch are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var principal *models.Principal
	for _, role := range models.VariantOrder {
		p, err := s.repo.FindByEmail(ctx, role, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve principal")
		}
		principal = p
		break
	}

	if principal == nil {
		return nil, appErrors.ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrAuthFailed
	}

	if !principal.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	token, expiresAt, err := s.issueToken(principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	if err := s.audit.Create(ctx, &models.AuditLog{
		ActorID:    &principal.ID,
		ActorRole:  string(principal.Role),
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &principal.ID,
		NewValues:  []byte(`{"status":"success"}`),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}

	issuedAt := time.Now().UTC()
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		IssuedAt:  issuedAt,
		Principal: models.PrincipalInfo{
			ID:          principal.ID,
			Email:       principal.Email,
			DisplayName: principal.DisplayName,
			Role:        principal.Role,
		},
		RedirectHint: RedirectHint(principal.Role, principal.ID),
	}, nil
}

// ValidateToken parses and validates a session token returning the claims.
// Malformed, bad-signature and expired tokens are told apart in logs only;
// the caller always sees the same unauthorized outcome.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		s.logger.Debug("session token rejected", zap.String("reason", tokenFailureReason(err)))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	}
	return "invalid"
}

// RedirectHint maps a role to the dashboard the frontend should land on. The
// switch is exhaustive over the closed role set.
func RedirectHint(role models.Role, id string) string {
	switch role {
	case models.RoleSuperAdmin:
		return "/dashboard/superadmin"
	case models.RoleInstitute:
		return "/institute/dashboard/" + id
	case models.RoleCollege:
		return "/dashboard/college"
	case models.RoleDepartment:
		return "/department/dashboard/" + id
	case models.RoleFaculty:
		return "/faculty/dashboard/" + id
	case models.RoleStudent:
		return "/students/dashboard/" + id
	}
	return "/dashboard"
}

func (s *AuthService) issueToken(principal *models.Principal) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   principal.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
