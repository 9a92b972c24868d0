package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/fasbit/thesisvault/internal/app/auth"
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/app/models/dto"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

const principalKey = "principal"

// AuthMiddleware resolves bearer credentials into principals for handlers.
type AuthMiddleware struct {
	resolver *appauth.Resolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver *appauth.Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token, err := pkgauth.ExtractBearerToken(authHeader)
	if err != nil {
		return ""
	}
	return token
}

// OptionalAuth resolves the caller's identity without requiring one. A
// missing, malformed or expired token leaves the caller as an anonymous
// visitor; public read endpoints use this.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, m.resolver.Resolve(bearerToken(c)))
		c.Next()
	}
}

// RequireAuth rejects callers without a valid token. Operations that mandate
// authentication fail with 401 instead of degrading to anonymous.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.resolver.ResolveStrict(bearerToken(c))
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Missing or invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role differs from
// required. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal.Role != required {
			detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal resolved for this request, anonymous
// when no auth middleware ran.
func GetPrincipal(c *gin.Context) appauth.Principal {
	if v, exists := c.Get(principalKey); exists {
		if p, ok := v.(appauth.Principal); ok {
			return p
		}
	}
	return appauth.Anonymous
}
