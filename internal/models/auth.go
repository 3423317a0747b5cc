package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating any principal variant.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// PrincipalInfo describes the authenticated principal in responses.
type PrincipalInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// LoginResponse returns the issued session token and principal info.
type LoginResponse struct {
	Token        string        `json:"token"`
	ExpiresIn    int64         `json:"expires_in"`
	IssuedAt     time.Time     `json:"issued_at"`
	Principal    PrincipalInfo `json:"principal"`
	RedirectHint string        `json:"redirect_hint"`
}

// SessionStatus is the answer to "am I logged in" and is never an error.
type SessionStatus struct {
	Authenticated bool           `json:"authenticated"`
	Principal     *PrincipalInfo `json:"principal,omitempty"`
}

// JWTClaims is the session token payload. The service is stateless: these
// claims are the only identity state a request carries.
type JWTClaims struct {
	PrincipalID string `json:"principal_id"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// Info projects the claims back into the response shape.
func (c *JWTClaims) Info() PrincipalInfo {
	return PrincipalInfo{
		ID:          c.PrincipalID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Role:        c.Role,
	}
}
