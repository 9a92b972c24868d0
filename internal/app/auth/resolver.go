package auth

import (
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

// Resolver turns an optional bearer credential into a Principal. It is a
// pure function of the token and the signing key: no storage lookups, no
// side effects, safe to call repeatedly with the same token.
type Resolver struct {
	jwtService *pkgauth.JWTService
}

// NewResolver creates a new Resolver
func NewResolver(jwtService *pkgauth.JWTService) *Resolver {
	return &Resolver{jwtService: jwtService}
}

// Resolve returns the principal for an optional token. A missing, malformed
// or expired token degrades to the anonymous principal; public read
// endpoints treat bad tokens as a visitor rather than an error.
func (r *Resolver) Resolve(tokenString string) Principal {
	if tokenString == "" {
		return Anonymous
	}
	claims, err := r.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return Anonymous
	}
	return principalFromClaims(claims)
}

// ResolveStrict returns the principal for an operation that mandates
// authentication. A missing or invalid token yields ErrUnauthorized instead
// of downgrading to anonymous.
func (r *Resolver) ResolveStrict(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Anonymous, apperrors.ErrUnauthorized
	}
	claims, err := r.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return Anonymous, apperrors.ErrUnauthorized
	}
	return principalFromClaims(claims), nil
}

func principalFromClaims(claims *pkgauth.Claims) Principal {
	p := Principal{
		Role:   models.Role(claims.Role),
		UserID: claims.UserID,
		Email:  claims.Email,
	}
	if p.Role == models.RoleStudent {
		p.StudentID = claims.StudentID
	}
	if !p.Role.Valid() {
		// A signed token with an unknown role is treated as a visitor.
		return Anonymous
	}
	return p
}
