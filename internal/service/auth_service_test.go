package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type principalKey struct {
	role  models.Role
	email string
}

type mockPrincipalRepo struct {
	byEmail map[principalKey]*models.Principal
	lookups []models.Role
}

func (m *mockPrincipalRepo) FindByEmail(ctx context.Context, role models.Role, email string) (*models.Principal, error) {
	m.lookups = append(m.lookups, role)
	p, ok := m.byEmail[principalKey{role: role, email: email}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	clone.Role = role
	return &clone, nil
}

func (m *mockPrincipalRepo) FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	for _, p := range m.byEmail {
		if p.ID == id && p.Role == role {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockAuditWriter struct {
	logs []*models.AuditLog
}

func (m *mockAuditWriter) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newTestAuthService(repo *mockPrincipalRepo, audit *mockAuditWriter) *AuthService {
	return NewAuthService(repo, audit, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "secret",
		Expiration: time.Hour,
		Issuer:     "test",
	})
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{
		{role: models.RoleStudent, email: "amy@example.com"}: {
			ID: "s1", Email: "amy@example.com", PasswordHash: hashPassword(t, "password"),
			DisplayName: "Amy", Role: models.RoleStudent, Active: true,
		},
	}}
	audit := &mockAuditWriter{}
	svc := newTestAuthService(repo, audit)

	res, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: "amy@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleStudent, res.Principal.Role)
	assert.Equal(t, "/students/dashboard/s1", res.RedirectHint)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)
}

func TestAuthenticateVariantPriority(t *testing.T) {
	// The same email exists as both a faculty and a student; the
	// higher-priority faculty variant must win.
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{
		{role: models.RoleFaculty, email: "lee@example.com"}: {
			ID: "f1", Email: "lee@example.com", PasswordHash: hashPassword(t, "faculty-pass"),
			Role: models.RoleFaculty, Active: true,
		},
		{role: models.RoleStudent, email: "lee@example.com"}: {
			ID: "s1", Email: "lee@example.com", PasswordHash: hashPassword(t, "student-pass"),
			Role: models.RoleStudent, Active: true,
		},
	}}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	res, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: "lee@example.com", Password: "faculty-pass"})
	require.NoError(t, err)
	assert.Equal(t, "f1", res.Principal.ID)
}

func TestAuthenticateNoFallThroughOnPasswordMismatch(t *testing.T) {
	// Logging in with the student's password must fail outright once the
	// faculty variant has claimed the email.
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{
		{role: models.RoleFaculty, email: "lee@example.com"}: {
			ID: "f1", Email: "lee@example.com", PasswordHash: hashPassword(t, "faculty-pass"),
			Role: models.RoleFaculty, Active: true,
		},
		{role: models.RoleStudent, email: "lee@example.com"}: {
			ID: "s1", Email: "lee@example.com", PasswordHash: hashPassword(t, "student-pass"),
			Role: models.RoleStudent, Active: true,
		},
	}}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: "lee@example.com", Password: "student-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAuthFailed.Code, appErrors.FromError(err).Code)
}

func TestAuthenticateUnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{
		{role: models.RoleStudent, email: "amy@example.com"}: {
			ID: "s1", Email: "amy@example.com", PasswordHash: hashPassword(t, "password"),
			Role: models.RoleStudent, Active: true,
		},
	}}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, errUnknown := svc.Authenticate(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	_, errWrongPass := svc.Authenticate(context.Background(), models.LoginRequest{Email: "amy@example.com", Password: "wrong"})
	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, appErrors.FromError(errUnknown).Message, appErrors.FromError(errWrongPass).Message)
}

func TestAuthenticateScansVariantsInOrder(t *testing.T) {
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{}}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, models.VariantOrder, repo.lookups)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &mockPrincipalRepo{byEmail: map[principalKey]*models.Principal{
		{role: models.RoleInstitute, email: "inst@example.com"}: {
			ID: "i1", Email: "inst@example.com", PasswordHash: hashPassword(t, "password"),
			Role: models.RoleInstitute, Active: false,
		},
	}}
	svc := newTestAuthService(repo, &mockAuditWriter{})

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: "inst@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(&mockPrincipalRepo{}, &mockAuditWriter{})
	principal := &models.Principal{ID: "u1", Email: "u1@example.com", DisplayName: "U One", Role: models.RoleCollege}

	token, _, err := svc.issueToken(principal)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.PrincipalID)
	assert.Equal(t, models.RoleCollege, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	expired := NewAuthService(&mockPrincipalRepo{}, &mockAuditWriter{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "secret",
		Expiration: -time.Hour,
		Issuer:     "test",
	})
	token, _, err := expired.issueToken(&models.Principal{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)

	svc := newTestAuthService(&mockPrincipalRepo{}, &mockAuditWriter{})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	other := NewAuthService(&mockPrincipalRepo{}, &mockAuditWriter{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "other-secret",
		Expiration: time.Hour,
		Issuer:     "test",
	})
	token, _, err := other.issueToken(&models.Principal{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)

	svc := newTestAuthService(&mockPrincipalRepo{}, &mockAuditWriter{})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
