package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/pkg/dberrors"
)

const userColumns = "id, email, student_id, password_hash, role, created_at"

// UserRepository handles database operations for accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.StudentID,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLoginKey retrieves an account whose email or student matricula
// matches key. The two columns share one login namespace, so a single
// lookup checks both. Returns nil if no account matches.
func (r *UserRepository) GetByLoginKey(ctx context.Context, key string) (*models.User, error) {
	query := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Or{
			squirrel.Eq{"email": key},
			squirrel.Eq{"student_id": key},
		}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return u, nil
}

// LoginKeyExists reports whether key collides with any email or student
// matricula already registered.
func (r *UserRepository) LoginKeyExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR student_id = $1)", key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking login key: %w", err)
	}
	return exists, nil
}

// EmailExists reports whether key is taken as an account email. Enrollment
// uses it to catch a matricula that collides with the email side of the
// login namespace; the student's own row matches by matricula, never here.
func (r *UserRepository) EmailExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// Create inserts a new account and returns its ID. A unique violation on
// either login column surfaces as apperrors via dberrors at the caller.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	query := squirrel.Insert("users").
		Columns("email", "student_id", "password_hash", "role", "created_at").
		Values(u.Email, u.StudentID, u.Password, u.Role, u.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, err
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// UpsertStudent creates a student account for a matricula, or resets its
// password if the matricula is already enrolled. Used by the enrollment
// roster import.
func (r *UserRepository) UpsertStudent(ctx context.Context, email, studentID, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (email, student_id, password_hash, role, created_at)
		VALUES ($1, $2, $3, 'student', NOW())
		ON CONFLICT (student_id) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		email, studentID, passwordHash)
	if err != nil {
		return fmt.Errorf("error upserting student: %w", err)
	}
	return nil
}

// CountByRole returns the number of accounts with the given role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE role = $1", role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}
