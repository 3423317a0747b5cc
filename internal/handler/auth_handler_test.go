package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campus-portal-api/internal/middleware"
	"github.com/campushub/campus-portal-api/internal/models"
	"github.com/campushub/campus-portal-api/internal/service"
)

type principalRepoStub struct {
	principal *models.Principal
}

func (s *principalRepoStub) FindByEmail(ctx context.Context, role models.Role, email string) (*models.Principal, error) {
	if s.principal != nil && s.principal.Role == role && strings.EqualFold(s.principal.Email, email) {
		clone := *s.principal
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *principalRepoStub) FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	if s.principal != nil && s.principal.ID == id {
		clone := *s.principal
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

type auditStub struct{}

func (s *auditStub) Create(ctx context.Context, log *models.AuditLog) error { return nil }

func newTestAuthHandler(t *testing.T, principal *models.Principal) (*AuthHandler, *service.AuthService) {
	t.Helper()
	svc := service.NewAuthService(&principalRepoStub{principal: principal}, &auditStub{}, validator.New(), zap.NewNop(), service.AuthConfig{
		Secret:     "secret",
		Expiration: time.Hour,
		Issuer:     "test",
	})
	return NewAuthHandler(svc, CookieConfig{MaxAge: time.Hour}), svc
}

func studentPrincipal(t *testing.T) *models.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Principal{
		ID:           "s1",
		Email:        "amy@example.com",
		PasswordHash: string(hash),
		DisplayName:  "Amy",
		Role:         models.RoleStudent,
		Active:       true,
	}
}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler(t, studentPrincipal(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(models.LoginRequest{Email: "amy@example.com", Password: "password"})
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "s1", envelope.Data.Principal.ID)
	assert.Equal(t, "/students/dashboard/s1", envelope.Data.RedirectHint)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler(t, studentPrincipal(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(models.LoginRequest{Email: "amy@example.com", Password: "wrong"})
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandlerStatusAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler(t, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/auth/status", nil)

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.SessionStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Authenticated)
	assert.Nil(t, envelope.Data.Principal)
}

func TestAuthHandlerStatusAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler(t, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/auth/status", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{PrincipalID: "s1", Role: models.RoleStudent, Email: "amy@example.com"})

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.SessionStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Authenticated)
	require.NotNil(t, envelope.Data.Principal)
	assert.Equal(t, "s1", envelope.Data.Principal.ID)
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestAuthHandler(t, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/logout", nil)

	handler.Logout(c)
	// Gin buffers the status code until the engine or a body write flushes
	// it; with a bodiless 204 on a bare test context we must flush manually.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestJWTMiddlewareAcceptsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	principal := studentPrincipal(t)
	handler, svc := newTestAuthHandler(t, principal)

	router := gin.New()
	router.GET("/auth/me", middleware.JWT(svc), handler.Me)

	loginW := httptest.NewRecorder()
	loginC, _ := gin.CreateTestContext(loginW)
	body, _ := json.Marshal(models.LoginRequest{Email: "amy@example.com", Password: "password"})
	loginC.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	loginC.Request.Header.Set("Content-Type", "application/json")
	handler.Login(loginC)
	require.Equal(t, http.StatusOK, loginW.Code)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, ck := range loginW.Result().Cookies() {
		req.AddCookie(ck)
	}
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.PrincipalInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "s1", envelope.Data.ID)
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, svc := newTestAuthHandler(t, nil)

	router := gin.New()
	router.GET("/auth/me", middleware.JWT(svc), handler.Me)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
