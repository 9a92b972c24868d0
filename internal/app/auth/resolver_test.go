package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

func newTestResolver(exp time.Duration) (*Resolver, *pkgauth.JWTService) {
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret-at-least-32-chars!!!",
		AccessTokenExp: exp,
		TokenIssuer:    "thesisvault-test",
	})
	return NewResolver(jwtService), jwtService
}

func tokenFor(t *testing.T, jwtService *pkgauth.JWTService, user *models.User) string {
	t.Helper()
	token, _, err := jwtService.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func TestResolve_EmptyTokenIsAnonymous(t *testing.T) {
	resolver, _ := newTestResolver(time.Hour)

	assert.Equal(t, Anonymous, resolver.Resolve(""))
}

func TestResolve_GarbageTokenIsAnonymous(t *testing.T) {
	resolver, _ := newTestResolver(time.Hour)

	assert.Equal(t, Anonymous, resolver.Resolve("not.a.token"))
}

func TestResolve_ExpiredTokenIsAnonymous(t *testing.T) {
	resolver, jwtService := newTestResolver(-time.Minute)
	token := tokenFor(t, jwtService, &models.User{ID: 1, Email: "x@fasbit.local", Role: models.RoleCoordinator})

	assert.Equal(t, Anonymous, resolver.Resolve(token))
}

func TestResolve_StudentCarriesMatricula(t *testing.T) {
	resolver, jwtService := newTestResolver(time.Hour)
	matricula := "A00123456"
	token := tokenFor(t, jwtService, &models.User{
		ID:        42,
		Email:     "a00123456@fasbit.local",
		StudentID: &matricula,
		Role:      models.RoleStudent,
	})

	p := resolver.Resolve(token)
	assert.Equal(t, models.RoleStudent, p.Role)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "A00123456", p.StudentID)
	assert.False(t, p.IsAnonymous())
}

func TestResolve_CoordinatorHasNoMatricula(t *testing.T) {
	resolver, jwtService := newTestResolver(time.Hour)
	token := tokenFor(t, jwtService, &models.User{
		ID:    7,
		Email: "coord@fasbit.local",
		Role:  models.RoleCoordinator,
	})

	p := resolver.Resolve(token)
	assert.Equal(t, models.RoleCoordinator, p.Role)
	assert.Empty(t, p.StudentID)
	assert.True(t, p.IsStaff())
}

func TestResolve_UnknownRoleIsAnonymous(t *testing.T) {
	resolver, jwtService := newTestResolver(time.Hour)
	token := tokenFor(t, jwtService, &models.User{
		ID:    9,
		Email: "x@fasbit.local",
		Role:  models.Role("superuser"),
	})

	assert.Equal(t, Anonymous, resolver.Resolve(token))
}

func TestResolveStrict(t *testing.T) {
	resolver, jwtService := newTestResolver(time.Hour)

	_, err := resolver.ResolveStrict("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = resolver.ResolveStrict("garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	token := tokenFor(t, jwtService, &models.User{ID: 7, Email: "coord@fasbit.local", Role: models.RoleCoordinator})
	p, err := resolver.ResolveStrict(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.UserID)
}
