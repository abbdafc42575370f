package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/policy"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	ContextPrincipal = "principal"

	MsgInvalidToken = "Given token not valid for any token type"
	MsgForbidden    = "You do not have permission to perform this action."
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc: jwtSvc,
	}
}

// Authenticate resolves the caller from a bearer access token. Requests without an
// Authorization header continue as anonymous; a malformed or invalid token is rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			handler.RespondError(c, apperrors.NewUnauthorized("Authorization header must contain two space-delimited values", nil))
			return
		}

		claims, err := m.jwtSvc.ValidateAccessToken(parts[1])
		if err != nil {
			handler.RespondError(c, apperrors.NewUnauthorized(MsgInvalidToken, err))
			return
		}

		c.Set(ContextPrincipal, claims.Principal())
		c.Next()
	}
}

// Authorize applies the access rule of resource to the current caller.
func Authorize(table policy.Table, resource policy.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !table.Allow(resource, GetPrincipal(c), c.Request.Method) {
			handler.RespondError(c, apperrors.NewForbidden(MsgForbidden))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller or the anonymous principal.
func GetPrincipal(c *gin.Context) model.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}
