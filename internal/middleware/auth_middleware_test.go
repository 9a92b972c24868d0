package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/fasbit/thesisvault/internal/app/auth"
	"github.com/fasbit/thesisvault/internal/app/models"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *pkgauth.JWTService) {
	t.Helper()
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret-at-least-32-chars!!!",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "thesisvault-test",
	})
	return NewAuthMiddleware(appauth.NewResolver(jwtService)), jwtService
}

func tokenFor(t *testing.T, jwtService *pkgauth.JWTService, role models.Role) string {
	t.Helper()
	token, _, err := jwtService.GenerateToken(&models.User{ID: 7, Email: "x@fasbit.local", Role: role})
	require.NoError(t, err)
	return token
}

// echoPrincipal writes the resolved role so tests can observe it.
func echoPrincipal(c *gin.Context) {
	c.String(http.StatusOK, string(GetPrincipal(c).Role))
}

func serve(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, jwtService := newTestMiddleware(t)

	router := gin.New()
	router.GET("/probe", m.OptionalAuth(), echoPrincipal)

	// No token: anonymous, not an error.
	rr := serve(router, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())

	// Garbage token degrades to anonymous instead of failing.
	rr = serve(router, "Bearer garbage")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())

	rr = serve(router, "Bearer "+tokenFor(t, jwtService, models.RoleCoordinator))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "coordinator", rr.Body.String())
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, jwtService := newTestMiddleware(t)

	router := gin.New()
	router.GET("/probe", m.RequireAuth(), echoPrincipal)

	rr := serve(router, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(router, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(router, "Bearer "+tokenFor(t, jwtService, models.RoleStudent))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "student", rr.Body.String())
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, jwtService := newTestMiddleware(t)

	router := gin.New()
	router.GET("/probe", m.RequireAuth(), m.RequireRole(models.RoleAdmin), echoPrincipal)

	rr := serve(router, "Bearer "+tokenFor(t, jwtService, models.RoleCoordinator))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(router, "Bearer "+tokenFor(t, jwtService, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "admin", rr.Body.String())
}

func TestGetPrincipal_Default(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, appauth.Anonymous, GetPrincipal(c))
}
