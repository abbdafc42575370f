package model

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}

// Principal is the caller identity resolved from a bearer token.
// The zero value is the anonymous caller.
type Principal struct {
	UserID  uuid.UUID
	Role    Role
	IsStaff bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// IsAdmin reports whether the caller has the admin role or the staff flag.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && (p.Role == RoleAdmin || p.IsStaff)
}
