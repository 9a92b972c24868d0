package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all repository instances
type Repositories struct {
	ThesisRepository *ThesisRepository
	UserRepository   *UserRepository
}

// NewRepositories creates all repositories sharing one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ThesisRepository: NewThesisRepository(db),
		UserRepository:   NewUserRepository(db),
	}
}
