package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/middleware"
	"github.com/campushub/campus-portal-api/internal/models"
	"github.com/campushub/campus-portal-api/internal/service"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
	"github.com/campushub/campus-portal-api/pkg/response"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Authenticate a principal
// @Description Resolve credentials against all principal variants and issue a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Authenticate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, res.Token, int(h.cookie.MaxAge.Seconds()))
	response.JSON(c, http.StatusOK, res, nil)
}

// Status godoc
// @Summary Session status
// @Description Report whether the request carries a valid session; never an error
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	status := models.SessionStatus{}
	if claims := claimsFromContext(c); claims != nil {
		info := claims.Info()
		status.Authenticated = true
		status.Principal = &info
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Me godoc
// @Summary Current principal
// @Description Return the authenticated principal's identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, claims.Info(), nil)
}

// Logout godoc
// @Summary End the session
// @Description Clear the session cookie; tokens are stateless so the client simply discards them
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	response.NoContent(c)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", h.cookie.Secure, true)
}
